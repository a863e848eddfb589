package models

import "time"

// User описывает профиль пользователя, полученный при регистрации
type User struct {
	ID    string `json:"userId"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session хранит токен и профиль текущего пользователя.
// Пустой Token означает отсутствие сессии; User может быть nil при заданном токене.
type Session struct {
	Token string
	User  *User
}

// Authenticated сообщает, есть ли в сессии токен
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ShortURL представляет сокращённую ссылку пользователя
type ShortURL struct {
	URLID       string    `json:"urlId"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	CreatedAt   time.Time `json:"createdAt"`
	ClickCount  int64     `json:"clickCount"`
}

// AnalyticsRecord представляет один переход по короткой ссылке
type AnalyticsRecord struct {
	ID        string    `json:"id"`
	ShortCode string    `json:"shortCode"`
	IP        string    `json:"ip"`
	Country   string    `json:"country"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	ClickedAt time.Time `json:"clickedAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    User   `json:"data"`
}
