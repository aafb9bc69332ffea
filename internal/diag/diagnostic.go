package diag

// Note adds context about a related entity (tensor, buffer, file).
type Note struct {
	Subject string
	Msg     string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	// Subject names what the diagnostic is about: a file path, a function or
	// a tensor.
	Subject string
	Notes   []Note
}
