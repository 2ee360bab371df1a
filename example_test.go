package sideeye_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/pkg/adapters/memory"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
)

// ExampleNew_memory builds one trial against an in-memory item catalogue.
func ExampleNew_memory() {
	loader, err := memory.NewLoader(&domain.Item{
		Number:    "1",
		Condition: "a",
		Regions: []domain.Region{
			{Number: 1, Start: domain.NewPoint(0, 0), End: domain.NewPoint(10, 0)},
			{Number: 2, Start: domain.NewPoint(10, 0), End: domain.NewPoint(30, 0)},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	analyzer, err := sideeye.New("", sideeye.WithItemLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	time := 700
	trial, err := analyzer.Build(context.Background(), ports.BuildRequest{
		ItemNumber: "1",
		Time:       &time,
		Fixations: []domain.Fixation{
			domain.NewFixation(domain.NewPoint(2, 0), 0, 200, nil),
			domain.NewFixation(domain.NewPoint(14, 0), 230, 450, nil),
			domain.NewFixation(domain.NewPoint(5, 0), 480, 700, nil),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(trial)
	for _, s := range trial.Saccades {
		from, to := trial.Endpoints(s)
		fmt.Printf("%d -> %d: %dms regression=%t\n", from.Index, to.Index, s.Duration, s.Regression)
	}
	// Output:
	// (index: 0, time: 700ms, item: (number: 1, condition: a, regions: 2), fixations: 3, saccades: 2)
	// 0 -> 1: 30ms regression=false
	// 1 -> 2: 30ms regression=true
}
