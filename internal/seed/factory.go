package seed

import (
	"fmt"
	"strings"
	"time"

	"warbler/internal/models"
	"warbler/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds demo entities without persisting them.
type Factory struct {
	faker *gofakeit.Faker
	now   time.Time
}

// NewFactory returns a factory seeded with seed. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed), now: time.Now()}
}

// BuildUser returns the n-th generated user. The index keeps usernames and
// emails unique across a run.
func (f *Factory) BuildUser(n int, passwordHash string) *models.User {
	suffix := fmt.Sprintf("%d", n)
	base := strings.ToLower(strings.ReplaceAll(f.faker.Username(), " ", ""))
	if limit := validation.MaxUsernameLength - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	username := base + suffix

	return &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       passwordHash,
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		HeaderImageURL: models.DefaultHeaderImageURL,
		Bio:            f.faker.Sentence(8),
		Location:       f.faker.City(),
	}
}

// BuildMessage returns a message by userID posted some time in the last 30 days.
func (f *Factory) BuildMessage(userID uint) *models.Message {
	text := []rune(f.faker.Sentence(f.faker.Number(3, 18)))
	if len(text) > models.MaxMessageLength {
		text = text[:models.MaxMessageLength]
	}
	age := time.Duration(f.faker.Number(0, 30*24*60)) * time.Minute
	return &models.Message{
		Text:      strings.TrimSpace(string(text)),
		UserID:    userID,
		Timestamp: f.now.Add(-age),
	}
}

// pick returns up to n distinct indexes in [0, size) other than skip.
func (f *Factory) pick(size, n, skip int) []int {
	candidates := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if i != skip {
			candidates = append(candidates, i)
		}
	}
	f.faker.ShuffleAnySlice(candidates)
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}
