package template

// Merge combines variable maps into one, later maps winning on key conflicts.
// Callers layer scenario-level variables over the app-level ones.
func Merge(maps ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, m := range maps {
		for key, value := range m {
			result[key] = value
		}
	}
	return result
}
