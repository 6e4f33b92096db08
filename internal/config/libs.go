package config

// ambientLibs are the platform libraries appended to every derived lib set.
var ambientLibs = []string{"dom", "dom.iterable"}

// LibsForTarget derives the library set implied by a target when the user
// configured a target without an explicit lib list. The result is monotonic:
// a newer target's set is a superset of every older target's set, plus the
// platform ambient libraries.
func LibsForTarget(target Target) []string {
	libs := make([]string, 0, len(targetOrder)+len(ambientLibs))
	for _, t := range targetOrder {
		libs = append(libs, string(t))
		if t == target {
			break
		}
	}
	return append(libs, ambientLibs...)
}
