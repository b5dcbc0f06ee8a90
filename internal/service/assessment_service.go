package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	"github.com/yourusername/exam-api/internal/fetcher"
	"github.com/yourusername/exam-api/internal/judge"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

// Principal - аутентифицированный субъект запроса
type Principal struct {
	UserID   uint
	Username string
	Role     string
}

// IsAdmin проверяет административную способность субъекта
func (p Principal) IsAdmin() bool {
	return p.Role == entity.RoleAdmin
}

// StartResult - результат начала попытки: запись попытки и тест,
// вопросы которого отдаются клиенту без правильных ответов
type StartResult struct {
	Assessment *entity.Assessment
	Test       *entity.Test
	Resumed    bool
}

// SubmitResult - итог сдачи попытки
type SubmitResult struct {
	Score int
	Total int
}

// RunCodeResult - итог прогона кода по одному coding-вопросу
type RunCodeResult struct {
	Verdict       string
	Passed        bool
	PassedCount   int
	TotalCount    int
	Stdout        string
	Expected      string
	CompileOutput string
	Stderr        string
}

// AssessmentDetail - попытка вместе с тестом для просмотра результатов.
// RevealAnswers управляет выдачей правильных ответов в DTO.
type AssessmentDetail struct {
	Assessment    *entity.Assessment
	Test          *entity.Test
	RevealAnswers bool
}

// AssessmentService управляет жизненным циклом попыток: старт,
// ограничение по времени, сдача ровно один раз, прогон кода.
type AssessmentService struct {
	testRepo       repository.TestRepository
	assessmentRepo repository.AssessmentRepository
	executor       judge.Executor
	fileFetcher    fetcher.FileFetcher
	clock          Clock
	languages      map[int]struct{}
}

// NewAssessmentService создает новый сервис попыток.
// languageIDs - разрешенные языки judge; пустой список разрешает все.
func NewAssessmentService(
	testRepo repository.TestRepository,
	assessmentRepo repository.AssessmentRepository,
	executor judge.Executor,
	fileFetcher fetcher.FileFetcher,
	clock Clock,
	languageIDs []int,
) *AssessmentService {
	var languages map[int]struct{}
	if len(languageIDs) > 0 {
		languages = make(map[int]struct{}, len(languageIDs))
		for _, id := range languageIDs {
			languages[id] = struct{}{}
		}
	}
	return &AssessmentService{
		testRepo:       testRepo,
		assessmentRepo: assessmentRepo,
		executor:       executor,
		fileFetcher:    fileFetcher,
		clock:          clock,
		languages:      languages,
	}
}

// Start начинает попытку пользователя пройти тест testCode.
// Повторный Start незавершенной попытки идемпотентен: возвращается
// существующая запись, startedAt не сбрасывается. Гонку двух первых
// Start разрешает уникальный индекс в store, не проверка в коде.
func (s *AssessmentService) Start(userID uint, testCode string) (*StartResult, error) {
	now := s.clock.Now()

	test, err := s.testRepo.GetByCode(testCode)
	if err != nil {
		return nil, err
	}

	if !test.IsLive(now) {
		return nil, fmt.Errorf("%w: test is not currently live", apperrors.ErrForbidden)
	}

	assessment := &entity.Assessment{
		UserID:      userID,
		TestID:      test.ID,
		StartedAt:   now,
		UserAnswers: entity.IntArray{},
	}

	stored, created, err := s.assessmentRepo.CreateIfAbsent(assessment)
	if err != nil {
		return nil, err
	}

	if !created {
		// Попытка уже существует: либо идемпотентный повтор, либо
		// проигрыш гонки - в обоих случаях отдаем запись победителя
		if stored.Completed {
			return nil, fmt.Errorf("%w: you have already completed this test", apperrors.ErrForbidden)
		}
		return &StartResult{Assessment: stored, Test: test, Resumed: true}, nil
	}

	log.Printf("[AssessmentService] Пользователь #%d начал тест %q (попытка #%d)", userID, testCode, stored.ID)
	return &StartResult{Assessment: stored, Test: test}, nil
}

// Submit сдает попытку и подсчитывает балл по mcq-вопросам.
// Сдача принимается ровно один раз: запись завершается условным
// обновлением completed=false, проигравший конкурентный Submit
// получает "already submitted" и ничего не перезаписывает.
func (s *AssessmentService) Submit(userID uint, testCode string, answers entity.IntArray) (*SubmitResult, error) {
	now := s.clock.Now()

	test, err := s.testRepo.GetByCode(testCode)
	if err != nil {
		return nil, err
	}

	assessment, err := s.assessmentRepo.FindOne(userID, test.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: assessment not started", apperrors.ErrForbidden)
		}
		return nil, err
	}

	if assessment.Completed {
		return nil, fmt.Errorf("%w: assessment already submitted", apperrors.ErrForbidden)
	}

	// Опоздавшая сдача отклоняется целиком, частичного скоринга нет
	if assessment.DeadlineExceeded(now, test.Duration) {
		return nil, fmt.Errorf("%w: time is up, cannot submit", apperrors.ErrForbidden)
	}

	score, total := scoreMCQ(test, answers)
	timeTaken := int(now.Sub(assessment.StartedAt).Seconds())

	ok, err := s.assessmentRepo.CompleteIfPending(assessment.ID, repository.SubmitPatch{
		UserAnswers:  answers,
		Score:        score,
		SubmittedAt:  now,
		TimeTakenSec: timeTaken,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Конкурентный Submit успел первым
		return nil, fmt.Errorf("%w: assessment already submitted", apperrors.ErrForbidden)
	}

	log.Printf("[AssessmentService] Попытка #%d сдана: %d/%d за %d сек", assessment.ID, score, total, timeTaken)
	return &SubmitResult{Score: score, Total: total}, nil
}

// scoreMCQ считает балл: +1 за каждое строгое совпадение индекса ответа
// с правильным вариантом. Ответы выровнены по порядку mcq-вопросов;
// отсутствующие элементы и выход за пределы массива - просто неверный ответ.
func scoreMCQ(test *entity.Test, answers entity.IntArray) (score, total int) {
	mcqIndex := 0
	for i := range test.Questions {
		question := &test.Questions[i]
		switch question.Type {
		case entity.QuestionTypeMCQ:
			if question.IsCorrect(answers.At(mcqIndex)) {
				score++
			}
			mcqIndex++
		case entity.QuestionTypeCoding:
			// coding-вопросы оцениваются отдельно через RunCode
		}
	}
	return score, mcqIndex
}

// RunCode исполняет код студента против тест-кейса coding-вопроса.
// Диагностическая операция: не меняет completed и итоговый score,
// повторные прогоны безопасны. Сбой judge или хранилища тест-кейсов
// возвращается как инфраструктурная ошибка без записи вердикта.
func (s *AssessmentService) RunCode(ctx context.Context, userID, questionID uint, sourceCode string, languageID int) (*RunCodeResult, error) {
	now := s.clock.Now()

	if sourceCode == "" {
		return nil, fmt.Errorf("%w: source code is required", apperrors.ErrValidation)
	}
	if s.languages != nil {
		if _, ok := s.languages[languageID]; !ok {
			return nil, fmt.Errorf("%w: language %d is not supported", apperrors.ErrValidation, languageID)
		}
	}

	test, err := s.testRepo.GetByQuestionID(questionID)
	if err != nil {
		return nil, err
	}

	question := test.QuestionByID(questionID)
	if question == nil {
		return nil, apperrors.ErrNotFound
	}
	if !question.IsCoding() {
		return nil, fmt.Errorf("%w: question #%d is not a coding question", apperrors.ErrValidation, questionID)
	}

	assessment, err := s.assessmentRepo.FindOne(userID, test.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: assessment not started", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if assessment.Completed {
		return nil, fmt.Errorf("%w: assessment already submitted", apperrors.ErrForbidden)
	}
	if assessment.DeadlineExceeded(now, test.Duration) {
		return nil, fmt.Errorf("%w: time is up", apperrors.ErrForbidden)
	}

	// Входные данные и эталонный вывод загружаются параллельно;
	// judge вызывается только когда доступны оба
	var input, expected string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var fetchErr error
		input, fetchErr = s.fileFetcher.FetchText(groupCtx, question.InputURL)
		return fetchErr
	})
	group.Go(func() error {
		var fetchErr error
		expected, fetchErr = s.fileFetcher.FetchText(groupCtx, question.ExpectedOutputURL)
		return fetchErr
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	execution, err := s.executor.Execute(ctx, judge.ExecRequest{
		SourceCode: sourceCode,
		LanguageID: languageID,
		Stdin:      input,
	})
	if err != nil {
		return nil, err
	}

	result := s.gradeExecution(execution, expected)

	answer := &entity.CodingAnswer{
		AssessmentID: assessment.ID,
		QuestionID:   question.ID,
		SourceCode:   sourceCode,
		LanguageID:   languageID,
		Verdict:      result.Verdict,
		PassedCount:  result.PassedCount,
		TotalCount:   result.TotalCount,
		Stdout:       result.Stdout,
		Expected:     result.Expected,
	}
	if err := s.assessmentRepo.UpsertCodingAnswer(answer); err != nil {
		return nil, err
	}

	log.Printf("[AssessmentService] Прогон кода: попытка #%d, вопрос #%d, вердикт %s", assessment.ID, question.ID, result.Verdict)
	return result, nil
}

// gradeExecution превращает сырой вывод judge в вердикт.
// Падение компиляции/рантайма - отдельные вердикты, до сравнения
// вывода дело не доходит. Сравнение - строгое равенство после
// нормализации (trim + CRLF→LF).
func (s *AssessmentService) gradeExecution(execution *judge.Execution, expected string) *RunCodeResult {
	if execution.HasCompileError() {
		return &RunCodeResult{
			Verdict:       entity.VerdictCompileError,
			TotalCount:    1,
			CompileOutput: execution.CompileOutput,
		}
	}
	if execution.HasRuntimeError() {
		return &RunCodeResult{
			Verdict:    entity.VerdictRuntimeError,
			TotalCount: 1,
			Stderr:     execution.Stderr,
		}
	}

	normalizedActual := judge.Normalize(execution.Stdout)
	normalizedExpected := judge.Normalize(expected)
	if normalizedActual == normalizedExpected {
		return &RunCodeResult{
			Verdict:     entity.VerdictPassed,
			Passed:      true,
			PassedCount: 1,
			TotalCount:  1,
			Stdout:      normalizedActual,
			Expected:    normalizedExpected,
		}
	}

	// Оба нормализованных текста возвращаются для отладки: у coding-вопроса
	// единственный публичный тест-кейс, скрывать эталон не от чего
	return &RunCodeResult{
		Verdict:    entity.VerdictWrongAnswer,
		TotalCount: 1,
		Stdout:     normalizedActual,
		Expected:   normalizedExpected,
	}
}

// GetDetail возвращает попытку для просмотра. Владелец видит свою
// попытку, администратор - любую; правильные ответы раскрываются
// только после завершения попытки или администратору.
func (s *AssessmentService) GetDetail(principal Principal, assessmentID uint) (*AssessmentDetail, error) {
	assessment, err := s.assessmentRepo.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && principal.UserID != assessment.UserID {
		return nil, fmt.Errorf("%w: you may only view your own assessments", apperrors.ErrForbidden)
	}

	test, err := s.testRepo.GetByID(assessment.TestID)
	if err != nil {
		return nil, err
	}

	return &AssessmentDetail{
		Assessment:    assessment,
		Test:          test,
		RevealAnswers: principal.IsAdmin() || assessment.Completed,
	}, nil
}

// ListMine возвращает все попытки пользователя
func (s *AssessmentService) ListMine(userID uint) ([]entity.Assessment, error) {
	return s.assessmentRepo.ListByUser(userID)
}
