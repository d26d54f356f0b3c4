package store

// GroupRecord is one stored group chat. Records are written once and never
// updated; ChatID is kept in its string form so comparisons are lexical.
type GroupRecord struct {
	Timestamp string `db:"timestamp"`
	GroupName string `db:"group_name"`
	ChatID    string `db:"chat_id"`
}

// Header is the column header of tabular backends.
var Header = []string{"Timestamp", "Group Name", "Chat ID"}
