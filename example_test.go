package journeys_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/journeys"
	"github.com/aretw0/journeys/pkg/adapters/memory"
	"github.com/aretw0/journeys/pkg/domain"
)

func motorJourney() *domain.Journey {
	return &domain.Journey{
		ID:             "motor",
		LineOfBusiness: "motor",
		Pages: []domain.Page{{
			ID:       "driver",
			Name:     "Driver",
			Template: domain.TemplateForm,
			Groups: []domain.Group{{
				ID:   "about",
				Name: "About you",
				Questions: []domain.Question{
					{ID: "name", Type: domain.QuestionText, Title: "Your name", Required: true},
					{
						ID: "claims", Type: domain.QuestionYesNo, Title: "Any claims in the last 5 years?",
						FollowUp: &domain.FollowUp{
							Enabled:      true,
							TriggerValue: "Yes",
							Questions:    []domain.Question{{ID: "amount", Type: domain.QuestionCurrency, Title: "Amount"}},
							Repeat:       domain.Repeat{Enabled: true, Min: 1, Max: 3, ItemLabel: "Claim"},
						},
					},
				},
			}},
		}},
	}
}

func sequence() domain.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("i%d", n)
	}
}

// ExampleNew_memory previews a journey held in memory, one question at a time.
func ExampleNew_memory() {
	loader, err := memory.NewFromJourneys(motorJourney())
	if err != nil {
		log.Fatal(err)
	}
	eng, err := journeys.New("", journeys.WithLoader(loader), journeys.WithIDGenerator(sequence()))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := eng.Open(ctx, "motor", "s1", domain.ModeQuestion)

	// The required name blocks the first advance.
	state, _ = eng.Next(ctx, state)
	fmt.Println(state.LastError)

	state, _ = eng.Answer(ctx, state, domain.Key("name"), "Ada")
	state, _ = eng.Next(ctx, state)
	fmt.Println(state.StepIndex)

	// Answering Yes reveals the first claim instance.
	state, _ = eng.Answer(ctx, state, domain.Key("claims"), "Yes")
	steps, _ := eng.Steps(ctx, state)
	for _, s := range steps {
		if s.InstanceLabel != "" {
			fmt.Println(s.ID, s.InstanceLabel)
			continue
		}
		fmt.Println(s.ID)
	}

	// Output:
	// This field is required.
	// 1
	// name
	// claims
	// claims/amount/i1 Claim 1
	// quote
	// summary
	// payment
}
