package api

import (
	"github.com/quill-sign/quill/internal/config"
	"github.com/quill-sign/quill/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the signing API surface.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"title":      {Type: "string"},
				"status":     {Type: "string", Enum: []any{"DRAFT", "PENDING", "COMPLETED"}},
				"filename":   {Type: "string"},
				"page_count": {Type: "integer"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"Recipient": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"name":           {Type: "string"},
				"email":          {Type: "string", Format: "email"},
				"role":           {Type: "string", Enum: []any{"SIGNER", "APPROVER", "CC", "VIEWER"}},
				"signing_status": {Type: "string"},
				"token":          {Type: "string"},
			},
		},
		"Field": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"recipient_id": {Type: "string", Format: "uuid"},
				"type":         {Type: "string"},
				"page":         {Type: "integer"},
				"inserted":     {Type: "boolean"},
			},
		},
		"Template": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"title":      {Type: "string"},
				"filename":   {Type: "string"},
				"page_count": {Type: "integer"},
			},
		},
		"SigningView": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document":  openapi.SchemaRef("Document"),
				"recipient": openapi.SchemaRef("Recipient"),
				"fields": {
					Type:  "array",
					Items: openapi.SchemaRef("Field"),
				},
			},
		},
	})

	spec.Paths["/documents"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List documents",
			Tags:    []string{"documents"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated documents", "Document"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Upload a document",
			Description: "Accepts a multipart PDF upload and creates a draft envelope.",
			Tags:        []string{"documents"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created document", "Document"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/documents/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Document", "Document"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/documents/{documentId}/recipients"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List recipients",
			Tags:       []string{"recipients"},
			Parameters: []*openapi.Parameter{openapi.PathParam("documentId", "Document identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Recipients", "Recipient"),
			},
		},
		Post: &openapi.Operation{
			Summary:    "Add a recipient",
			Tags:       []string{"recipients"},
			Parameters: []*openapi.Parameter{openapi.PathParam("documentId", "Document identifier")},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created recipient", "Recipient"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/documents/{documentId}/fields"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List fields",
			Tags:       []string{"fields"},
			Parameters: []*openapi.Parameter{openapi.PathParam("documentId", "Document identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Fields", "Field"),
			},
		},
		Post: &openapi.Operation{
			Summary:    "Place a field",
			Tags:       []string{"fields"},
			Parameters: []*openapi.Parameter{openapi.PathParam("documentId", "Document identifier")},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created field", "Field"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/documents/{documentId}/send"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Send a document for signing",
			Tags:       []string{"signing"},
			Parameters: []*openapi.Parameter{openapi.PathParam("documentId", "Document identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Pending document", "Document"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/sign/{token}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Open a signing session",
			Tags:    []string{"signing"},
			Parameters: []*openapi.Parameter{
				{Name: "token", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Signing view", "SigningView"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
	spec.Paths["/templates"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List templates",
			Tags:    []string{"templates"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated templates", "Template"),
			},
		},
		Post: &openapi.Operation{
			Summary: "Upload a template",
			Tags:    []string{"templates"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created template", "Template"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	return spec
}
