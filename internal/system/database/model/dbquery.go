package model

// DBQuery couples an identifier with its SQL text. The identifier is used
// for logging and diagnostics only.
type DBQuery struct {
	ID    string
	Query string
}
