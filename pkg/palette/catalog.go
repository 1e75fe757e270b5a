package palette

import (
	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/stagelist"
)

// Default returns a palette with the built-in triggers, actions and approver roles.
func Default() *Palette {
	p := New(nil)

	for _, item := range defaultItems() {
		if err := p.Register(item); err != nil {
			panic(err)
		}
	}

	return p
}

func defaultItems() []Item {
	items := []Item{
		{
			ID:          "trigger.form-submitted",
			Group:       models.GroupTrigger,
			Label:       "Form submitted",
			Description: "Starts the workflow when a request form is submitted",
			Kind:        stagelist.SourceStage,
			Stage: &models.Stage{
				Group:    models.GroupTrigger,
				Label:    "Form submitted",
				FlowType: models.FlowTypeTrigger,
				Disabled: true,
				Condition: []*models.Condition{
					{
						ID: "request_type", Label: "Request type", Style: models.Style1,
						Value: []string{}, ConditionType: models.ComparatorEqual,
						Options: []models.Option{
							{Label: "Access", Value: "access"},
							{Label: "Purchase", Value: "purchase"},
							{Label: "Dataset", Value: "dataset"},
						},
					},
					{ID: "department", Label: "Department", Style: models.Style3, Value: "", ConditionType: models.ComparatorEqual, Optional: true},
					{ID: "urgent", Label: "Urgent", Style: models.Style5, Value: false, ConditionType: models.ComparatorEqual, Optional: true},
					{ID: "submitted_after", Label: "Submitted after", Style: models.Style6, Value: "", ConditionType: models.ComparatorGreaterEqual, Optional: true},
				},
			},
		},
		{
			ID:          "bigquery.table.create",
			Group:       string(models.FlowTypeGoogleCloud),
			Label:       "Create BigQuery table",
			Description: "Creates a table with the given schema",
			Kind:        stagelist.SourceStage,
			Stage: &models.Stage{
				Group:    string(models.FlowTypeGoogleCloud),
				Label:    "Create BigQuery table",
				FlowType: models.FlowTypeGoogleCloud,
				Condition: []*models.Condition{
					{ID: "dataset", Label: "Dataset", Style: models.Style1, Value: ""},
					{ID: "table", Label: "Table name", Style: models.Style1, Value: ""},
					{ID: "schema", Label: "Schema", Style: models.Style4, Value: "[]", Des: "Columns of the new table"},
					{
						ID: "location", Label: "Location", Style: models.Style2, Value: "US",
						Options: []models.Option{{Label: "US", Value: "US"}, {Label: "EU", Value: "EU"}},
					},
				},
			},
		},
		{
			ID:          "storage.bucket.create",
			Group:       string(models.FlowTypeGoogleCloud),
			Label:       "Create Cloud Storage bucket",
			Description: "Creates a bucket owned by the requester",
			Kind:        stagelist.SourceStage,
			Stage: &models.Stage{
				Group:    string(models.FlowTypeGoogleCloud),
				Label:    "Create Cloud Storage bucket",
				FlowType: models.FlowTypeGoogleCloud,
				Condition: []*models.Condition{
					{ID: "bucket", Label: "Bucket name", Style: models.Style3, Value: ""},
					{
						ID: "storage_class", Label: "Storage class", Style: models.Style2, Value: "STANDARD",
						Options: []models.Option{
							{Label: "Standard", Value: "STANDARD"},
							{Label: "Nearline", Value: "NEARLINE"},
							{Label: "Coldline", Value: "COLDLINE"},
						},
					},
					{ID: "owner", Label: "Owner field", Style: models.Style5, Value: "", Optional: true},
				},
			},
		},
		{
			ID:          "notify.email",
			Group:       string(models.FlowTypeSystem),
			Label:       "Send email",
			Description: "Emails a recipient taken from the form",
			Kind:        stagelist.SourceStage,
			Stage: &models.Stage{
				Group:    string(models.FlowTypeSystem),
				Label:    "Send email",
				FlowType: models.FlowTypeSystem,
				Condition: []*models.Condition{
					{ID: "recipient", Label: "Recipient field", Style: models.Style5, Value: ""},
					{ID: "subject", Label: "Subject", Style: models.Style1, Value: ""},
					{ID: "body", Label: "Body", Style: models.Style3, Value: ""},
				},
			},
		},
		{
			ID:          "webhook.call",
			Group:       string(models.FlowTypeSystem),
			Label:       "Call webhook",
			Description: "Sends the rendered body to an HTTP endpoint",
			Kind:        stagelist.SourceStage,
			Stage: &models.Stage{
				Group:    string(models.FlowTypeSystem),
				Label:    "Call webhook",
				FlowType: models.FlowTypeSystem,
				Condition: []*models.Condition{
					{ID: "url", Label: "URL", Style: models.Style1, Value: ""},
					{
						ID: "method", Label: "Method", Style: models.Style2, Value: "POST",
						Options: []models.Option{{Label: "POST", Value: "POST"}, {Label: "PUT", Value: "PUT"}},
					},
					{ID: "payload", Label: "Payload", Style: models.Style3, Value: "", Optional: true},
				},
			},
		},
	}

	for _, role := range []struct{ id, label string }{
		{"manager", "Line manager"},
		{"finance", "Finance"},
		{"security", "Security officer"},
	} {
		approver := &models.Condition{ID: role.id, Label: role.label}

		items = append(items, Item{
			ID:          "approver." + role.id,
			Group:       models.GroupApproval,
			Label:       role.label,
			Description: "Requires approval from " + role.label,
			Kind:        stagelist.SourceApprover,
			Condition:   approver,
			Stage: &models.Stage{
				Group:     models.GroupApproval,
				Label:     "Approval",
				FlowType:  models.FlowTypeApproval,
				Disabled:  true,
				Condition: []*models.Condition{approver.Clone()},
			},
		})
	}

	return items
}
