package usecase

// TrackedProjects returns how many projects hold in-process coordination state
func TrackedProjects(uc *UseCases) int {
	return uc.states.count()
}
