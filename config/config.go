package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}

// Policy holds the lending rules. Defaults match the library's current rules,
// every value can be overridden through the environment.
type Policy struct {
	MaxLoansPerPerson   int // outstanding loans a person may hold
	LoanDays            int // default loan period
	MinQuantity         int
	MaxQuantityDefault  int // per-request cap for person types without a special rule
	MaxQuantityStudent  int // students: one unit per request
	AbsoluteMaxQuantity int // request sanity ceiling, independent of stock
	MinRenewalDays      int
	MaxRenewalDays      int
	MaxLostNoteLength   int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxLoansPerPerson:   3,
		LoanDays:            15,
		MinQuantity:         1,
		MaxQuantityDefault:  5,
		MaxQuantityStudent:  1,
		AbsoluteMaxQuantity: 50,
		MinRenewalDays:      1,
		MaxRenewalDays:      30,
		MaxLostNoteLength:   500,
	}
}

type Config struct {
	RedisAddr     string
	RedisPwd      string
	WebOrigin     string
	SweepCron     string // optional cron spec for the overdue sweep; empty = on-demand only
	StockCacheTTL time.Duration
	Policy        Policy
}

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Printf("config: ignoring invalid %s=%q", k, os.Getenv(k))
		}
		return def
	}

	p := DefaultPolicy()
	p.MaxLoansPerPerson = getInt("MAX_LOANS_PER_PERSON", p.MaxLoansPerPerson)
	p.LoanDays = getInt("LOAN_DAYS", p.LoanDays)
	p.MinQuantity = getInt("MIN_QUANTITY", p.MinQuantity)
	p.MaxQuantityDefault = getInt("MAX_QUANTITY_DEFAULT", p.MaxQuantityDefault)
	p.MaxQuantityStudent = getInt("MAX_QUANTITY_STUDENT", p.MaxQuantityStudent)
	p.AbsoluteMaxQuantity = getInt("ABSOLUTE_MAX_QUANTITY", p.AbsoluteMaxQuantity)
	p.MinRenewalDays = getInt("MIN_RENEWAL_DAYS", p.MinRenewalDays)
	p.MaxRenewalDays = getInt("MAX_RENEWAL_DAYS", p.MaxRenewalDays)
	p.MaxLostNoteLength = getInt("MAX_LOST_NOTE_LENGTH", p.MaxLostNoteLength)

	ttl := 30 * time.Second
	if d, err := time.ParseDuration(get("STOCK_CACHE_TTL", "30s")); err == nil {
		ttl = d
	}

	return Config{
		RedisAddr:     get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:      os.Getenv("REDIS_PASSWORD"),
		WebOrigin:     get("WEB_ORIGIN", "http://localhost:3000"),
		SweepCron:     os.Getenv("SWEEP_CRON"),
		StockCacheTTL: ttl,
		Policy:        p,
	}
}
