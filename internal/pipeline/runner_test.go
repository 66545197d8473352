package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/nlp"
	"github.com/perturbia/perturbia/internal/perturb"
)

func newTestEngine(t *testing.T, types []string, seed uint64) *perturb.Engine {
	t.Helper()

	adapter, err := nlp.NewAdapter(context.Background(), nlp.Config{}, nil, nil)
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}

	engine, err := perturb.NewEngine(model.PerturbationConfig{
		EnabledTypes: types,
		Order:        string(model.OrderConfigured),
		Seed:         seed,
	}, adapter, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func loadOf(statements ...string) *LoadResult {
	load := &LoadResult{Total: len(statements)}
	for _, s := range statements {
		load.Inputs = append(load.Inputs, model.StatementInput{Statement: s})
	}
	return load
}

func TestRunner_Run(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 1, 0, nil)

	load := loadOf(
		"The deal closed on December 31, 2023.",
		"Nothing to change in this one.",
		"Audited on 1/15/2024.",
	)

	results, report := runner.Run(context.Background(), load)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].UpdatedStatement != "The deal closed on 12/31/2023." {
		t.Errorf("Unexpected first update: %q", results[0].UpdatedStatement)
	}
	if results[1].Perturbed() {
		t.Errorf("Expected pass-through for second statement, got %+v", results[1].Operations)
	}
	if results[1].UpdatedStatement != results[1].Statement {
		t.Errorf("Pass-through statement was modified: %q", results[1].UpdatedStatement)
	}
	if results[2].UpdatedStatement != "Audited on January 15, 2024." {
		t.Errorf("Unexpected third update: %q", results[2].UpdatedStatement)
	}

	if report.Total != 3 || report.Processed != 3 {
		t.Errorf("Expected total=3 processed=3, got total=%d processed=%d", report.Total, report.Processed)
	}
	if report.Perturbed != 2 {
		t.Errorf("Expected 2 perturbed, got %d", report.Perturbed)
	}
	if report.Capped != 0 {
		t.Errorf("Expected 0 capped, got %d", report.Capped)
	}
}

func TestRunner_ResultsKeepInputOrder(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 4, 0, nil)

	var statements []string
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			statements = append(statements, "Signed on December 31, 2023.")
		} else {
			statements = append(statements, "No date in this statement.")
		}
	}

	results, _ := runner.Run(context.Background(), loadOf(statements...))

	if len(results) != 50 {
		t.Fatalf("Expected 50 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Statement != statements[i] {
			t.Fatalf("Result %d out of order: got %q", i, res.Statement)
		}
		if i%2 == 0 && !res.Perturbed() {
			t.Errorf("Result %d: expected a perturbation", i)
		}
		if i%2 == 1 && res.Perturbed() {
			t.Errorf("Result %d: expected pass-through", i)
		}
	}
}

func TestRunner_CapKeepsEarliestStatements(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 4, 2, nil)

	load := loadOf(
		"First on December 31, 2023.",
		"No date here.",
		"Second on 1/15/2024.",
		"Third on March 3, 2021.",
		"Fourth on 7/4/2020.",
	)

	results, report := runner.Run(context.Background(), load)

	perturbed := []int{}
	for i, res := range results {
		if res.Perturbed() {
			perturbed = append(perturbed, i)
		}
	}
	if !reflect.DeepEqual(perturbed, []int{0, 2}) {
		t.Errorf("Expected perturbations at indices [0 2], got %v", perturbed)
	}

	for _, i := range []int{3, 4} {
		if results[i].UpdatedStatement != results[i].Statement {
			t.Errorf("Capped result %d still modified: %q", i, results[i].UpdatedStatement)
		}
		if len(results[i].Operations) != 0 {
			t.Errorf("Capped result %d still carries operations: %+v", i, results[i].Operations)
		}
	}

	if report.Perturbed != 2 {
		t.Errorf("Expected 2 perturbed, got %d", report.Perturbed)
	}
	if report.Capped != 2 {
		t.Errorf("Expected 2 capped, got %d", report.Capped)
	}
}

func TestRunner_CapAboveApplicableIsNoop(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 1, 10, nil)

	load := loadOf("Signed on December 31, 2023.", "No date here.")
	_, report := runner.Run(context.Background(), load)

	if report.Perturbed != 1 {
		t.Errorf("Expected 1 perturbed, got %d", report.Perturbed)
	}
	if report.Capped != 0 {
		t.Errorf("Expected 0 capped, got %d", report.Capped)
	}
}

func TestRunner_ParallelMatchesSequential(t *testing.T) {
	base := []string{
		"The merger closed on December 31, 2023.",
		"Revenue rose to $14.5 million.",
		"Smith, Johnson, and Lee all approved the merger.",
		"The board approved the merger.",
		"Nothing applicable in this one.",
	}
	var statements []string
	for i := 0; i < 8; i++ {
		statements = append(statements, base...)
	}

	types := []string{"date_format", "number_rephrase", "entity_reorder", "synonym"}

	sequential, seqReport := NewRunner(newTestEngine(t, types, 42), 1, 0, nil).
		Run(context.Background(), loadOf(statements...))
	parallel, parReport := NewRunner(newTestEngine(t, types, 42), 4, 0, nil).
		Run(context.Background(), loadOf(statements...))

	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatal("Parallel run produced different results than sequential run")
	}
	if seqReport.Perturbed != parReport.Perturbed {
		t.Errorf("Perturbed counts differ: sequential %d, parallel %d",
			seqReport.Perturbed, parReport.Perturbed)
	}

	seqJSON, err := Render(sequential, true)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	parJSON, err := Render(parallel, true)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if string(seqJSON) != string(parJSON) {
		t.Error("Rendered output differs between worker counts")
	}
}

func TestRunner_SkippedRecordsAbsentFromOutput(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 1, 0, nil)

	load := loadOf("Valid one.", "Valid two.")
	load.Total = 4
	load.Malformed = []int{1, 3}

	results, report := runner.Run(context.Background(), load)

	if len(results) != 2 {
		t.Errorf("Expected 2 results (skipped records dropped), got %d", len(results))
	}
	if report.Total != 4 {
		t.Errorf("Expected total=4, got %d", report.Total)
	}
	if !reflect.DeepEqual(report.Skipped, []int{1, 3}) {
		t.Errorf("Expected skipped [1 3], got %v", report.Skipped)
	}
}

func TestRunner_EmptyBatch(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 2, 0, nil)

	results, report := runner.Run(context.Background(), &LoadResult{})

	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if report.Perturbed != 0 || report.Processed != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestRunner_CanceledContextPassesThrough(t *testing.T) {
	engine := newTestEngine(t, []string{"date_format"}, 42)
	runner := NewRunner(engine, 2, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, _ := runner.Run(ctx, loadOf("Signed on December 31, 2023."))

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Perturbed() {
		t.Error("Expected pass-through after cancellation")
	}
	if results[0].UpdatedStatement != results[0].Statement {
		t.Errorf("Canceled run modified the statement: %q", results[0].UpdatedStatement)
	}
}
