package conversation

// Guard rejects messages from operators not on the allow-list before
// they reach any state handler. The list is static, loaded at process
// start.
type Guard struct {
	allowed map[int64]struct{}
}

// NewGuard creates a guard from the allowed user ids.
func NewGuard(userIDs []int64) *Guard {
	allowed := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = struct{}{}
	}
	return &Guard{allowed: allowed}
}

// Check reports whether the user may operate the bot.
func (g *Guard) Check(userID int64) bool {
	_, ok := g.allowed[userID]
	return ok
}
