package rag

import "strings"

// TourismKeywords is the canonical on-topic vocabulary. A query containing
// any of these terms is treated as a tourism question.
var TourismKeywords = []string{
	"관광", "여행", "대전", "맛집", "숙박", "교통", "축제", "박물관", "공원", "쇼핑",
	"문화", "역사", "자연", "레저", "힐링", "과학관", "시장", "카페", "레스토랑", "호텔",
	"펜션", "캠핑", "등산", "수영", "스키", "골프", "낚시", "피크닉", "산책", "드라이브",
}

// IsOnTopic reports whether query mentions any tourism keyword.
// Matching is a case-insensitive substring test.
func IsOnTopic(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range TourismKeywords {
		if strings.Contains(q, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
