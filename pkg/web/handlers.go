// Package web provides HTTP handlers and REST API endpoints for definition authoring.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/services"
	"github.com/dukex/formflow/pkg/template"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	definitionService *services.Definition
	designer          *services.Designer
	validator         *validator.Validate
}

func NewAPIHandlers(
	definitionService *services.Definition,
	designer *services.Designer,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		definitionService: definitionService,
		designer:          designer,
		validator:         validator,
	}
}

// Register mounts every authoring route on app.
func (h *APIHandlers) Register(app *fiber.App) {
	d := app.Group("/definitions")
	d.Get("/", h.GetDefinitions)
	d.Post("/", h.CreateDefinition)
	d.Get("/:id", h.GetDefinition)
	d.Patch("/:id", h.UpdateDefinition)
	d.Delete("/:id", h.DeleteDefinition)

	d.Post("/:id/session", h.OpenSession)
	d.Get("/:id/session", h.GetSession)
	d.Delete("/:id/session", h.CloseSession)
	d.Post("/:id/session/save", h.SaveSession)

	d.Post("/:id/stages/placeholder", h.InsertPlaceholder)
	d.Post("/:id/stages/:index/resolve", h.ResolvePlaceholder)
	d.Delete("/:id/stages/:index", h.DeleteStage)
	d.Post("/:id/moves", h.Move)

	d.Post("/:id/stages/:index/edit", h.BeginEdit)
	d.Put("/:id/stages/:index/conditions/:cond", h.SetConditionValue)
	d.Put("/:id/stages/:index/conditions/:cond/comparator", h.SetComparator)
	d.Delete("/:id/stages/:index/conditions/:cond", h.RemoveApprover)
	d.Post("/:id/stages/:index/commit", h.CommitEdit)
	d.Post("/:id/stages/:index/cancel", h.CancelEdit)

	app.Get("/palette", h.GetPalette)
	app.Post("/palette/groups/:group/toggle", h.TogglePaletteGroup)

	app.Post("/templates/encode", h.EncodeTemplate)
	app.Post("/templates/decode", h.DecodeTemplate)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	persistenceCheck, ok := h.definitionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Formflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Formflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence": persistenceCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetDefinitions(c fiber.Ctx) error {
	definitions, err := h.definitionService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"definitions": definitions,
		"total_count": len(definitions),
	})
}

func (h *APIHandlers) GetDefinition(c fiber.Ctx) error {
	definition, err := h.definitionService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(definition)
}

func (h *APIHandlers) CreateDefinition(c fiber.Ctx) error {
	var req CreateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.definitionService.Create(c.Context(), &models.WorkflowDefinition{
		Name:   req.Name,
		Owner:  req.Owner,
		Stages: req.Stages,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateDefinition(c fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateDefinitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.definitionService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Owner != nil {
		existing.Owner = *req.Owner
	}

	if req.Stages != nil {
		existing.Stages = req.Stages
	}

	updated, err := h.definitionService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteDefinition(c fiber.Ctx) error {
	if err := h.definitionService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) OpenSession(c fiber.Ctx) error {
	var req OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	snapshot, err := h.designer.Open(c.Context(), c.Params("id"), req.Catalog)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	return h.respond(c)(h.designer.Snapshot(c.Context(), c.Params("id")))
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	if err := h.designer.Close(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	return h.respond(c)(h.designer.Save(c.Context(), c.Params("id")))
}

func (h *APIHandlers) InsertPlaceholder(c fiber.Ctx) error {
	var req InsertPlaceholderRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.InsertPlaceholder(c.Context(), c.Params("id"), *req.After))
}

func (h *APIHandlers) ResolvePlaceholder(c fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req ResolvePlaceholderRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.ResolvePlaceholder(c.Context(), c.Params("id"), index, req.ItemID))
}

func (h *APIHandlers) DeleteStage(c fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.DeleteStage(c.Context(), c.Params("id"), index))
}

func (h *APIHandlers) Move(c fiber.Ctx) error {
	var req MoveRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.Move(c.Context(), c.Params("id"), req.ItemID, *req.Target))
}

func (h *APIHandlers) BeginEdit(c fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.BeginEdit(c.Context(), c.Params("id"), index))
}

func (h *APIHandlers) SetConditionValue(c fiber.Ctx) error {
	index, cond, err := conditionParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req ConditionValueRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	return h.respond(c)(h.designer.SetConditionValue(c.Context(), c.Params("id"), index, cond, req.Value))
}

func (h *APIHandlers) SetComparator(c fiber.Ctx) error {
	index, cond, err := conditionParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req ComparatorRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.SetComparator(c.Context(), c.Params("id"), index, cond, req.Comparator))
}

func (h *APIHandlers) RemoveApprover(c fiber.Ctx) error {
	index, cond, err := conditionParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.RemoveApprover(c.Context(), c.Params("id"), index, cond))
}

func (h *APIHandlers) CommitEdit(c fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.CommitEdit(c.Context(), c.Params("id"), index))
}

func (h *APIHandlers) CancelEdit(c fiber.Ctx) error {
	index, err := intParam(c, "index")
	if err != nil {
		return badRequest(c, err.Error())
	}

	return h.respond(c)(h.designer.CancelEdit(c.Context(), c.Params("id"), index))
}

func (h *APIHandlers) GetPalette(c fiber.Ctx) error {
	p := h.designer.Palette()

	if query := c.Query("q"); query != "" {
		return c.JSON(fiber.Map{"items": p.Search(query)})
	}

	return c.JSON(fiber.Map{"groups": p.Groups()})
}

func (h *APIHandlers) TogglePaletteGroup(c fiber.Ctx) error {
	collapsed, err := h.designer.Palette().Toggle(c.Params("group"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"group": c.Params("group"), "collapsed": collapsed})
}

func (h *APIHandlers) EncodeTemplate(c fiber.Ctx) error {
	var req EncodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(TemplateResponse{
		Canonical:  req.Canonical,
		Editable:   template.Encode(req.Canonical, req.Catalog),
		Tokens:     template.Tokens(req.Canonical),
		Unresolved: template.Unresolved(req.Canonical, req.Catalog),
	})
}

func (h *APIHandlers) DecodeTemplate(c fiber.Ctx) error {
	var req DecodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	matching := template.MatchLoose
	if req.Strict {
		matching = template.MatchStrict
	}

	editor := template.NewInMemoryEditor()
	editor.SetContent(req.Editable)

	canonical, err := template.NewCodec(editor, nil, template.WithTokenMatching(matching)).Save()
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(TemplateResponse{
		Canonical: canonical,
		Tokens:    template.Tokens(canonical),
	})
}

func (h *APIHandlers) bind(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON format")
	}

	return h.validator.Struct(req)
}

// respond writes a session snapshot or the service error that replaced it.
func (h *APIHandlers) respond(c fiber.Ctx) func(*services.Snapshot, error) error {
	return func(snapshot *services.Snapshot, err error) error {
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(snapshot)
	}
}

func intParam(c fiber.Ctx, name string) (int, error) {
	value, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" parameter")
	}

	return value, nil
}

func conditionParams(c fiber.Ctx) (int, int, error) {
	index, err := intParam(c, "index")
	if err != nil {
		return 0, 0, err
	}

	cond, err := intParam(c, "cond")
	if err != nil {
		return 0, 0, err
	}

	return index, cond, nil
}
