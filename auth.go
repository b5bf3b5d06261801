package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 7 * 24 * time.Hour
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

// Auth issues and verifies player session tokens and handles registered
// accounts. Guests get a token carrying only their player id.
type Auth struct {
	db        *DB
	jwtSecret []byte

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler
func NewAuth(db *DB) *Auth {
	return &Auth{
		db:        db,
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// Register creates a named account
func (a *Auth) Register(username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return 0, fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return 0, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if a.db == nil {
		return 0, fmt.Errorf("accounts unavailable")
	}
	existing, err := a.db.GetAccountByUsername(username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("username taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, err
	}
	return a.db.CreateAccount(username, string(hash))
}

// Login verifies credentials, rate-limited per remote address
func (a *Auth) Login(username, password, remoteAddr string) (*AccountRow, error) {
	if !a.allowAttempt(remoteAddr) {
		return nil, fmt.Errorf("too many login attempts")
	}
	if a.db == nil {
		return nil, fmt.Errorf("accounts unavailable")
	}
	account, err := a.db.GetAccountByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PassHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return account, nil
}

func (a *Auth) allowAttempt(remoteAddr string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()
	now := time.Now()
	entry, ok := a.rateMap[remoteAddr]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[remoteAddr] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// IssueToken signs a session token carrying the in-game player id
func (a *Auth) IssueToken(playerID uint32, username string) (string, error) {
	claims := jwt.MapClaims{
		"pid": int64(playerID),
		"exp": time.Now().Add(jwtExpiry).Unix(),
	}
	if username != "" {
		claims["user"] = username
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken returns the player id embedded in a valid session token
func (a *Auth) VerifyToken(tokenStr string) (uint32, bool) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	pid, ok := claims["pid"].(float64)
	if !ok || pid < 1 {
		return 0, false
	}
	return uint32(pid), true
}
