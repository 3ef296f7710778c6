package api

// WriteFileRequest is the body of POST /api/file/write.
type WriteFileRequest struct {
	Content *string `json:"content" example:"hello" validate:"required"`
}

// TerminalRequest is the body of POST /api/terminal.
type TerminalRequest struct {
	Command string `json:"command" example:"ls -la" validate:"required"`
	Cwd     string `json:"cwd,omitempty" example:"/home/user"`
}

// SuccessResponse acknowledges a write.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// LinkResponse is the body of GET /api/lnk/resolve.
type LinkResponse struct {
	Target string `json:"target" example:"C:\\Users\\me\\Documents"`
}
