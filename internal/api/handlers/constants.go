package handlers

const (
	bytesPerMB = 1024 * 1024

	// room for the text fields and data URI prefix on top of the encoded image
	bodySlackBytes = 64 * 1024

	// multipart form fields
	formFieldName  = "name"
	formFieldTheme = "theme"
	formFieldAge   = "age"
	formFieldPhoto = "photo"

	// SSE event names
	eventProgress = "progress"
	eventResult   = "result"
	eventError    = "error"
	eventDone     = "done"
)
