package fakeapi

import (
	"time"

	"github.com/tempizhere/shortyclient/internal/models"
)

// Учётные данные демо-пользователя
const (
	DemoName     = "Demo"
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo"
)

// SeedDemo создаёт демо-пользователя с несколькими ссылками и переходами
func (s *Server) SeedDemo() (models.User, error) {
	u, err := s.AddUser(DemoName, DemoEmail, DemoPassword)
	if err != nil {
		return models.User{}, err
	}

	docs := s.AddURL(u.ID, "https://go.dev/doc/effective_go")
	s.AddURL(u.ID, "https://pkg.go.dev/net/http")

	now := time.Now().UTC()
	clicks := []models.AnalyticsRecord{
		{IP: "203.0.113.10", Country: "DE", Device: "desktop", Browser: "Firefox"},
		{IP: "203.0.113.11", Country: "US", Device: "mobile", Browser: "Safari"},
		{IP: "203.0.113.12", Country: "DE", Device: "desktop", Browser: "Chrome"},
	}
	for i, rec := range clicks {
		rec.ClickedAt = now.Add(-time.Duration(len(clicks)-i) * time.Hour)
		s.Click(docs.ShortCode, rec)
	}
	return u, nil
}
