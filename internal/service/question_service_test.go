package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/config"
	"github.com/anatomyace/anatomy-ace/internal/loader"
	"github.com/anatomyace/anatomy-ace/internal/model"
)

func newQuestionService(bank *memQuestions) *QuestionService {
	cfg := &config.Config{DefaultPoints: 3, DefaultTimeLimit: 240}
	return NewQuestionService(bank, nil, cfg, zerolog.Nop())
}

func TestQuestionService_ImportFile(t *testing.T) {
	bank := &memQuestions{}
	svc := newQuestionService(bank)

	src := "Question,Answer,Type,Keywords\n" +
		"Longest bone?,Femur,단답형,\n" +
		"Chest organs?,\"heart, lungs\",서술형,custom;list\n"

	res, err := svc.ImportFile(context.Background(), "bank.csv", strings.NewReader(src), false)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if res.Imported != 2 || res.KeywordsGenerated != 1 {
		t.Errorf("result = %+v", res)
	}
	if bank.questions[0].Keywords != "femur" {
		t.Errorf("generated keywords = %q", bank.questions[0].Keywords)
	}
	if bank.questions[1].Keywords != "custom;list" {
		t.Errorf("existing keywords overwritten: %q", bank.questions[1].Keywords)
	}
}

func TestQuestionService_ImportRegenerate(t *testing.T) {
	bank := &memQuestions{}
	svc := newQuestionService(bank)

	qs := []model.Question{{ID: uuid.New(), Text: "q", Answer: "Atlas, Axis", Type: model.QuestionTypeShortAnswer, Keywords: "stale"}}
	res, err := svc.Import(context.Background(), qs, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.KeywordsGenerated != 1 || bank.questions[0].Keywords != "atlas, axis;atlas;axis" {
		t.Errorf("keywords = %q (%+v)", bank.questions[0].Keywords, res)
	}
}

func TestQuestionService_ImportErrors(t *testing.T) {
	svc := newQuestionService(&memQuestions{})
	ctx := context.Background()

	if _, err := svc.ImportFile(ctx, "bank.pdf", strings.NewReader(""), false); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("pdf err = %v", err)
	}
	if _, err := svc.ImportFile(ctx, "bank.csv", strings.NewReader("Question\nq\n"), false); !errors.Is(err, loader.ErrMissingColumn) {
		t.Errorf("missing column err = %v", err)
	}
	if _, err := svc.Import(ctx, nil, false); !errors.Is(err, ErrEmptyImport) {
		t.Errorf("empty err = %v", err)
	}
}

func TestQuestionService_RegenerateKeywords(t *testing.T) {
	bank := &memQuestions{questions: []model.Question{
		{ID: uuid.New(), Answer: "Femur", Type: model.QuestionTypeShortAnswer, Keywords: "femur"},
		{ID: uuid.New(), Answer: "Atlas, Axis", Type: model.QuestionTypeShortAnswer, Keywords: "old"},
	}}
	svc := newQuestionService(bank)

	changed, err := svc.RegenerateKeywords(context.Background())
	if err != nil {
		t.Fatalf("RegenerateKeywords: %v", err)
	}
	if changed != 1 || bank.questions[1].Keywords != "atlas, axis;atlas;axis" {
		t.Errorf("changed = %d, keywords = %q", changed, bank.questions[1].Keywords)
	}
}

func TestQuestionService_ListAndStats(t *testing.T) {
	bank := &memQuestions{}
	for i := 0; i < 25; i++ {
		year := 2023
		qt := model.QuestionTypeShortAnswer
		if i%5 == 0 {
			year, qt = 2024, model.QuestionTypeEssay
		}
		bank.questions = append(bank.questions, model.Question{ID: uuid.New(), Answer: "a", Type: qt, Year: year})
	}
	svc := newQuestionService(bank)
	ctx := context.Background()

	page, pg, err := svc.List(ctx, model.QuestionFilter{}, 2, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 10 || pg.TotalItems != 25 || pg.TotalPages != 3 || pg.Page != 2 {
		t.Errorf("page = %d items, pagination = %+v", len(page), pg)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 25 || stats.ByType[model.QuestionTypeEssay] != 5 || stats.ByYear[2023] != 20 {
		t.Errorf("stats = %+v", stats)
	}

	essay := model.QuestionTypeEssay
	pool, err := svc.Pool(ctx, model.QuestionFilter{Type: &essay})
	if err != nil || len(pool) != 5 {
		t.Errorf("Pool(essay) = %d, %v", len(pool), err)
	}
}
