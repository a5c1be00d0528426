package music

// Chords returns the twelve chromatic root names, starting at C.
// A new slice is built on every call.
func Chords() []string {
	return []string{
		"C", "C#", "D", "D#", "E", "F",
		"F#", "G", "G#", "A", "A#", "B",
	}
}

// Genres returns the genre names offered for songwriting prompts.
// A new slice is built on every call.
func Genres() []string {
	return []string{
		"Blues",
		"Indie Folk",
		"Country",
		"Electronic",
		"Folk",
		"Hip Hop",
		"Jazz",
		"Pop",
		"Rock",
		"Singer Songwriter",
		"Reggae",
	}
}
