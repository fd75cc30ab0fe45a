package runner

// ShouldRun reports whether a scenario tagged with app passes the allow-list.
// An empty allow-list runs everything; membership is an exact name match.
func ShouldRun(app string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, name := range allowed {
		if name == app {
			return true
		}
	}
	return false
}
