package segment

// NoteOK is reported when a record carries no diagnostics
const NoteOK = "ok"

// DedupeNotes keeps the first occurrence of each note, in order
func DedupeNotes(notes []string) []string {
	seen := make(map[string]struct{}, len(notes))
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NotesOrOK returns a de-duplicated copy, or ["ok"] when empty
func NotesOrOK(notes []string) []string {
	out := DedupeNotes(notes)
	if len(out) == 0 {
		return []string{NoteOK}
	}
	return out
}
