package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/domain/repository"
	apperrors "github.com/yourusername/exam-api/internal/pkg/errors"
)

const leaderboardCacheTTL = 30 * time.Second

// LeaderboardEntry - одна строка лидерборда теста
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Score        int    `json:"score"`
	TimeTakenSec *int   `json:"time_taken_sec"`
	Completed    bool   `json:"completed"`
}

// LeaderboardStats - агрегаты по завершенным попыткам теста
type LeaderboardStats struct {
	Attempts        int     `json:"attempts"`
	Completed       int     `json:"completed"`
	MaxScore        int     `json:"max_score"`
	MinScore        int     `json:"min_score"`
	AvgScore        float64 `json:"avg_score"`
	AvgTimeTakenSec int     `json:"avg_time_taken_sec"`
}

// Leaderboard - лидерборд теста с агрегатами
type Leaderboard struct {
	TestID  uint               `json:"test_id"`
	Title   string             `json:"title"`
	Entries []LeaderboardEntry `json:"entries"`
	Stats   LeaderboardStats   `json:"stats"`
}

// LeaderboardService строит рейтинг участников теста.
// Результат кешируется в Redis на короткий TTL: лидерборд запрашивают
// чаще, чем он меняется.
type LeaderboardService struct {
	testRepo       repository.TestRepository
	assessmentRepo repository.AssessmentRepository
	userRepo       repository.UserRepository
	cacheRepo      repository.CacheRepository
}

// NewLeaderboardService создает новый сервис лидерборда
func NewLeaderboardService(
	testRepo repository.TestRepository,
	assessmentRepo repository.AssessmentRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *LeaderboardService {
	return &LeaderboardService{
		testRepo:       testRepo,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		cacheRepo:      cacheRepo,
	}
}

// Get возвращает лидерборд теста. Попытки упорядочены по score по
// убыванию, при равном балле быстрее - выше; незавершенные попытки
// идут в конце без времени.
func (s *LeaderboardService) Get(testID uint) (*Leaderboard, error) {
	cacheKey := fmt.Sprintf("leaderboard:test:%d", testID)

	var cached Leaderboard
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		// Кеш недоступен - строим из базы, это не ошибка запроса
		log.Printf("[LeaderboardService] Ошибка чтения кеша: %v", err)
	}

	leaderboard, err := s.build(testID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(cacheKey, leaderboard, leaderboardCacheTTL); err != nil {
		log.Printf("[LeaderboardService] Ошибка записи кеша: %v", err)
	}

	return leaderboard, nil
}

func (s *LeaderboardService) build(testID uint) (*Leaderboard, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}

	// Репозиторий уже возвращает попытки в порядке рейтинга
	assessments, err := s.assessmentRepo.ListByTest(testID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(assessments))
	for i := range assessments {
		userIDs = append(userIDs, assessments[i].UserID)
	}
	users, err := s.userRepo.GetByIDs(userIDs)
	if err != nil {
		return nil, err
	}
	usernames := make(map[uint]string, len(users))
	for i := range users {
		usernames[users[i].ID] = users[i].Username
	}

	entries := make([]LeaderboardEntry, 0, len(assessments))
	for i := range assessments {
		a := &assessments[i]
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       a.UserID,
			Username:     usernames[a.UserID],
			Score:        a.Score,
			TimeTakenSec: a.TimeTakenSec,
			Completed:    a.Completed,
		})
	}

	return &Leaderboard{
		TestID:  test.ID,
		Title:   test.Title,
		Entries: entries,
		Stats:   computeStats(assessments),
	}, nil
}

// computeStats считает агрегаты только по завершенным попыткам
func computeStats(assessments []entity.Assessment) LeaderboardStats {
	stats := LeaderboardStats{Attempts: len(assessments)}

	scoreSum := 0
	timeSum := 0
	timeCount := 0
	for i := range assessments {
		a := &assessments[i]
		if !a.Completed {
			continue
		}
		if stats.Completed == 0 {
			stats.MaxScore = a.Score
			stats.MinScore = a.Score
		} else {
			if a.Score > stats.MaxScore {
				stats.MaxScore = a.Score
			}
			if a.Score < stats.MinScore {
				stats.MinScore = a.Score
			}
		}
		stats.Completed++
		scoreSum += a.Score
		if a.TimeTakenSec != nil {
			timeSum += *a.TimeTakenSec
			timeCount++
		}
	}

	if stats.Completed > 0 {
		stats.AvgScore = math.Round(float64(scoreSum)/float64(stats.Completed)*100) / 100
	}
	if timeCount > 0 {
		stats.AvgTimeTakenSec = timeSum / timeCount
	}
	return stats
}

// ExportCSV сериализует лидерборд в CSV
func (s *LeaderboardService) ExportCSV(testID uint) ([]byte, error) {
	leaderboard, err := s.Get(testID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Rank", "Username", "Score", "Time (sec)", "Completed"}); err != nil {
		return nil, err
	}
	for _, e := range leaderboard.Entries {
		timeTaken := ""
		if e.TimeTakenSec != nil {
			timeTaken = strconv.Itoa(*e.TimeTakenSec)
		}
		row := []string{
			strconv.Itoa(e.Rank),
			e.Username,
			strconv.Itoa(e.Score),
			timeTaken,
			strconv.FormatBool(e.Completed),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportExcel сериализует лидерборд в xlsx-файл
func (s *LeaderboardService) ExportExcel(testID uint) ([]byte, error) {
	leaderboard, err := s.Get(testID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[LeaderboardService] Ошибка закрытия файла Excel: %v", err)
		}
	}()

	sheet := "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Rank", "Username", "Score", "Time (sec)", "Completed"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, e := range leaderboard.Entries {
		values := []interface{}{e.Rank, e.Username, e.Score, nil, e.Completed}
		if e.TimeTakenSec != nil {
			values[3] = *e.TimeTakenSec
		}
		for colIdx, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
