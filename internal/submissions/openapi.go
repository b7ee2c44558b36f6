package submissions

import "github.com/JaimeStill/image-intake/pkg/openapi"

type spec struct {
	Submit       *openapi.Operation
	Status       *openapi.Operation
	List         *openapi.Operation
	Find         *openapi.Operation
	Image        *openapi.Operation
	UpdateStatus *openapi.Operation
	Delete       *openapi.Operation
}

var Spec = spec{
	Submit: &openapi.Operation{
		Summary:     "Submit image",
		Description: "Upload an image with the submitter's email. The image is stored and a pending submission is recorded.",
		RequestBody: openapi.RequestBodyMultipart(&openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Property{
				"email": {Type: "string", Format: "email", Description: "Submitter email address"},
				"image": {Type: "string", Format: "binary", Description: "Image file"},
			},
			Required: []string{"email", "image"},
		}, true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Image received", "SubmitResponse"),
			400: openapi.ResponseRef("BadRequest"),
			413: {Description: "Image exceeds the configured size limit"},
			415: {Description: "Image content type not allowed"},
		},
	},
	Status: &openapi.Operation{
		Summary:     "Get submission status",
		Description: "Poll processing status. result_url is only present once processing completed.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Submission ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submission status", "StatusResponse"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	List: &openapi.Operation{
		Summary:     "List submissions",
		Description: "List submissions newest first with pagination and optional filters",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Items per page", false),
			openapi.QueryParam("search", "string", "Search in email", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields, prefix with - for descending", false),
			openapi.QueryParam("status", "string", "Filter by status", false),
			openapi.QueryParam("email", "string", "Filter by email (contains)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submissions list", "SubmissionPageResult"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Find: &openapi.Operation{
		Summary:     "Find submission",
		Description: "Find the full submission record by ID",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Submission ID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submission details", "Submission"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	UpdateStatus: &openapi.Operation{
		Summary:     "Update submission status",
		Description: "Move a submission to a new status. completed requires a result path; completed and failed are terminal.",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Submission ID"),
		},
		RequestBody: openapi.RequestBodyJSON("UpdateStatusCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Submission updated", "Submission"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	Image: &openapi.Operation{
		Summary:     "Get submission image",
		Description: "Stream the originally uploaded image",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Submission ID"),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Image binary data",
				Content: map[string]*openapi.MediaType{
					"image/jpeg": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"image/png":  {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
					"image/gif":  {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete submission",
		Description: "Delete the submission and its stored image",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Submission ID"),
		},
		Responses: map[int]*openapi.Response{
			204: {Description: "Submission deleted"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

func (spec) Schemas() map[string]*openapi.Schema {
	statuses := make([]string, len(Statuses))
	for i, s := range Statuses {
		statuses[i] = string(s)
	}

	return map[string]*openapi.Schema{
		"Submission": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"id":                  {Type: "string", Format: "uuid"},
				"email":               {Type: "string", Format: "email"},
				"original_image_path": {Type: "string", Description: "Location of the uploaded image"},
				"result_image_path":   {Type: "string", Nullable: true, Description: "Location of the processed image"},
				"status":              {Type: "string", Enum: statuses},
				"created_at":          {Type: "string", Format: "date-time"},
				"updated_at":          {Type: "string", Format: "date-time"},
			},
		},
		"SubmitResponse": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"submission_id": {Type: "string", Format: "uuid"},
				"status":        {Type: "string", Example: string(StatusReceived)},
				"message":       {Type: "string"},
			},
		},
		"StatusResponse": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"submission_id": {Type: "string", Format: "uuid"},
				"status":        {Type: "string", Enum: statuses},
				"result_url":    {Type: "string", Nullable: true},
			},
		},
		"UpdateStatusCommand": {
			Type:     "object",
			Required: []string{"status"},
			Properties: map[string]*openapi.Property{
				"status":      {Type: "string", Enum: statuses},
				"result_path": {Type: "string", Description: "Required when completing unless already set"},
			},
		},
		"SubmissionPageResult": {
			Type: "object",
			Properties: map[string]*openapi.Property{
				"data":        {Type: "array", Description: "Submission records"},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}
