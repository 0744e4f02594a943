package service

import "time"

// MatchRequest 是匹配查询参数
type MatchRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	MatchType string `json:"match_type" validate:"required,oneof=players clubs agents coaches player club agent coach"`
	Backend   string `json:"backend" validate:"omitempty,oneof=knn similarity"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	Skip      int    `json:"skip" validate:"gte=0"`
}

// Match 是一条匹配记录；ID 由 (UserID, TargetID) 确定性生成
type Match struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	TargetID  string         `json:"target_id"`
	Score     float64        `json:"score"`
	MatchData map[string]any `json:"match_data"`
	CreatedAt time.Time      `json:"created_at"`
}

// MatchList 是匹配查询结果；Total 为分页前的全部合格候选数
type MatchList struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
	Cached  bool    `json:"cached"`
}

// RecommendationItem 是一条推荐
type RecommendationItem struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Score       float64        `json:"score"`
	Metadata    map[string]any `json:"metadata"`
}

// RecommendationResponse 是推荐结果；Total 为截断前的合格推荐数
type RecommendationResponse struct {
	Items []RecommendationItem `json:"items"`
	Total int                  `json:"total"`
}
