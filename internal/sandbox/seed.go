package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"subsctl/internal/models"
	"time"

	"github.com/pkg/errors"
)

type seedPackage struct {
	id     int64
	name   string
	amount string
	cycle  string
}

var (
	seedMembers = []string{
		"Ann Lee", "Bob Stone", "Carla Diaz", "Dmitri Volkov", "Eve Martin",
		"Farid Haddad", "Grace Kim", "Hugo Blanc", "Ines Costa", "Jon Park",
		"Kira Novak", "Liam Walsh", "Maya Cohen", "Nils Berg", "Olga Ivanova",
	}
	seedPackages = []seedPackage{
		{id: 1, name: "Basic", amount: "9.99", cycle: "Monthly"},
		{id: 2, name: "Gold", amount: "19.99", cycle: "Monthly"},
		{id: 3, name: "Platinum", amount: "199.00", cycle: "Yearly"},
		{id: 4, name: "Trial", amount: "0", cycle: "Weekly"},
	}
	seedServices = []string{"Gym", "Pool", "Yoga", "Sauna"}
	seedStatuses = []models.Status{
		models.StatusActive, models.StatusActive, models.StatusActive,
		models.StatusExpired, models.StatusPending, models.StatusCancelled, models.StatusDeleted,
	}
)

// Seed inserts n generated subscriptions. The same seed yields the same rows.
func (s *Store) Seed(ctx context.Context, n int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	now := s.now().Truncate(time.Minute)

	for i := 0; i < n; i++ {
		memberIdx := rng.Intn(len(seedMembers))
		name := seedMembers[memberIdx]
		pkg := seedPackages[rng.Intn(len(seedPackages))]
		status := seedStatuses[rng.Intn(len(seedStatuses))]

		var expiresAt *time.Time
		if status != models.StatusPending {
			t := now.AddDate(0, 0, rng.Intn(365)-90)
			expiresAt = &t
		}

		sub := models.Subscription{
			Member: models.Member{
				ID:    int64(memberIdx + 1),
				Name:  name,
				Email: fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", "."))),
			},
			Package:   models.Package{ID: pkg.id, Name: pkg.name, Amount: models.Amount(pkg.amount)},
			Cycle:     models.Cycle{Name: pkg.cycle},
			Service:   models.Service{Name: seedServices[rng.Intn(len(seedServices))]},
			Status:    status,
			ExpiresAt: expiresAt,
		}

		if _, err := s.Insert(ctx, sub); err != nil {
			return errors.Wrapf(err, "failed to seed subscription %d", i+1)
		}
	}

	return nil
}
