package logx

// Entry is one captured record.
type Entry struct {
	Level  Level
	Msg    string
	Fields []Field
}

// Field returns the value of key and whether it was present.
func (e Entry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Recorder keeps every record in memory. Tests use it to assert on what a
// component logged. Not safe for concurrent use.
type Recorder struct {
	Entries []Entry
}

func (r *Recorder) Log(level Level, msg string, fields ...Field) {
	cp := append([]Field(nil), fields...)
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg, Fields: cp})
}

// Count returns how many records were logged at level.
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, e := range r.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Last returns the most recent record, or a zero Entry.
func (r *Recorder) Last() Entry {
	if len(r.Entries) == 0 {
		return Entry{}
	}
	return r.Entries[len(r.Entries)-1]
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() { r.Entries = r.Entries[:0] }
