package service

import (
	"sort"

	"github.com/Franklyn101/sagbama-land-authentication/internal/model"
	"github.com/Franklyn101/sagbama-land-authentication/internal/store"
)

// StatisticsService 统计服务接口
// 看板聚合视图, 全部从存储快照计算: 权威集合是单个 blob 而非行存储,
// 没有可下推的 SQL 聚合
type StatisticsService interface {
	GetDocumentStatisticsByStatus() ([]*DocumentStatisticsByStatus, error)
	GetDocumentStatisticsByType() ([]*DocumentStatisticsByType, error)
	GetDocumentStatisticsByDay() ([]*DocumentStatisticsByDay, error)
	GetVerifierStatistics() ([]*VerifierStatistics, error)
}

// DocumentStatisticsByStatus 按状态统计
type DocumentStatisticsByStatus struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DocumentStatisticsByType 按文书类型统计
type DocumentStatisticsByType struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// DocumentStatisticsByDay 按创建日期统计
type DocumentStatisticsByDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// VerifierStatistics 审核人吞吐统计
type VerifierStatistics struct {
	Verifier string `json:"verifier"`
	Verified int    `json:"verified"`
	Rejected int    `json:"rejected"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	store store.DocumentStore
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(st store.DocumentStore) StatisticsService {
	return &statisticsService{store: st}
}

// GetDocumentStatisticsByStatus 按状态统计文档
func (s *statisticsService) GetDocumentStatisticsByStatus() ([]*DocumentStatisticsByStatus, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, r := range records {
		counts[string(r.Status)]++
	}
	stats := make([]*DocumentStatisticsByStatus, 0, len(counts))
	for _, status := range []model.DocumentStatus{model.StatusPending, model.StatusVerified, model.StatusRejected} {
		if c, ok := counts[string(status)]; ok {
			stats = append(stats, &DocumentStatisticsByStatus{Status: string(status), Count: c})
		}
	}
	return stats, nil
}

// GetDocumentStatisticsByType 按文书类型统计
func (s *statisticsService) GetDocumentStatisticsByType() ([]*DocumentStatisticsByType, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, r := range records {
		t := r.Type
		if t == "" {
			t = "other"
		}
		counts[t]++
	}
	stats := make([]*DocumentStatisticsByType, 0, len(counts))
	for t, c := range counts {
		stats = append(stats, &DocumentStatisticsByType{Type: t, Count: c})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Type < stats[j].Type })
	return stats, nil
}

// GetDocumentStatisticsByDay 按创建日期统计
func (s *statisticsService) GetDocumentStatisticsByDay() ([]*DocumentStatisticsByDay, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, r := range records {
		counts[r.CreatedAt.Format("2006-01-02")]++
	}
	stats := make([]*DocumentStatisticsByDay, 0, len(counts))
	for d, c := range counts {
		stats = append(stats, &DocumentStatisticsByDay{Date: d, Count: c})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date > stats[j].Date })
	return stats, nil
}

// GetVerifierStatistics 按审核人统计处理量
func (s *statisticsService) GetVerifierStatistics() ([]*VerifierStatistics, error) {
	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	byVerifier := map[string]*VerifierStatistics{}
	for _, r := range records {
		if !r.Status.Terminal() || r.VerifiedBy == "" {
			continue
		}
		vs, ok := byVerifier[r.VerifiedBy]
		if !ok {
			vs = &VerifierStatistics{Verifier: r.VerifiedBy}
			byVerifier[r.VerifiedBy] = vs
		}
		if r.Status == model.StatusVerified {
			vs.Verified++
		} else {
			vs.Rejected++
		}
	}
	stats := make([]*VerifierStatistics, 0, len(byVerifier))
	for _, vs := range byVerifier {
		stats = append(stats, vs)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Verifier < stats[j].Verifier })
	return stats, nil
}
