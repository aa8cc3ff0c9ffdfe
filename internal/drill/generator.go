package drill

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/okian/rampart/internal/domain/model"
	"github.com/okian/rampart/internal/domain/training"
)

// Submission is one synthetic module completion.
type Submission struct {
	Identity model.Identity
	ModuleID string
	Score    int
}

// NewUsers mints n synthetic identities with unique ids.
func NewUsers(n int) []model.Identity {
	users := make([]model.Identity, n)
	for i := range users {
		users[i] = model.Identity{
			UserID: uuid.NewString(),
			Name:   fmt.Sprintf("drill-user-%03d", i+1),
		}
	}
	return users
}

// NewSubmissions produces count submissions spread across users and modules.
// Scores skew toward the upper half so leaderboard churn stays interesting.
func NewSubmissions(users []model.Identity, count int) []Submission {
	modules := training.Modules()
	subs := make([]Submission, count)
	for i := range subs {
		score := rand.Intn(training.MaxScore + 1)
		if rand.Intn(2) == 0 {
			score = training.MaxScore/2 + rand.Intn(training.MaxScore/2+1)
		}
		subs[i] = Submission{
			Identity: users[rand.Intn(len(users))],
			ModuleID: modules[rand.Intn(len(modules))],
			Score:    score,
		}
	}
	return subs
}
