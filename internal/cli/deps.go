package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/dispatch"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/memory"
	"daily-quiz-service/internal/infra/postgres"
	redisinfra "daily-quiz-service/internal/infra/redis"
	"daily-quiz-service/internal/infra/sms"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

type otpRecords interface {
	app.OTPRequestStore
	dispatch.RecordStore
}

type triggerQueue interface {
	dispatch.Publisher
	dispatch.Consumer
}

// deps is the storage and queue wiring shared by start and dispatch.
type deps struct {
	cfg     config.Config
	loc     *time.Location
	pool    *pgxpool.Pool
	redis   *redis.Client
	quizzes app.QuizFinder
	otp     otpRecords
	leads   app.LeadStore
	queue   triggerQueue
}

func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{cfg: cfg, loc: config.Location(cfg.Quiz.Timezone)}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
		d.quizzes = postgres.NewQuizStore(pool)
		d.otp = postgres.NewOTPStore(pool)
		d.leads = postgres.NewLeadStore(pool)
	} else {
		log.Printf("postgres not configured, using in-memory records with a sample quiz")
		d.quizzes = memory.NewQuizStore(sampleQuiz(time.Now().In(d.loc)))
		d.otp = memory.NewOTPStore()
		d.leads = memory.NewLeadStore()
	}

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.queue = redisinfra.NewStreamQueue(d.redis, redisinfra.OTPStream, redisinfra.DispatcherGroup)
	} else {
		d.queue = memory.NewQueue(64)
	}
	return d, nil
}

// quizFinder puts the day cache in front of the quiz store.
func (d *deps) quizFinder() app.QuizFinder {
	ttl := config.Duration(d.cfg.Quiz.TTL, 10*time.Minute)
	if d.redis != nil {
		return redisinfra.NewDayCache(d.redis, d.quizzes, ttl)
	}
	return memory.NewDayCache(d.quizzes, ttl)
}

func (d *deps) visitStore() app.VisitRepository {
	ttl := config.Duration(d.cfg.Redis.TTL, 30*time.Minute)
	if d.redis != nil {
		return redisinfra.NewVisitStore(d.redis, ttl)
	}
	return memory.NewVisitStore(ttl)
}

func (d *deps) otpValidity() time.Duration {
	return config.Duration(d.cfg.OTP.Validity, app.DefaultOTPValidity)
}

// worker builds the dispatcher consumer. Without credentials the dispatcher skips sends.
func (d *deps) worker() *dispatch.Worker {
	var sender dispatch.SMSSender
	if d.cfg.SMS.Complete() {
		s, err := sms.NewTwilioSender(d.cfg.SMS.AccountSID, d.cfg.SMS.AuthToken, d.cfg.SMS.FromNumber, d.cfg.SMS.CountryCode)
		if err != nil {
			log.Printf("sms sender unavailable: %v", err)
		} else {
			sender = s
		}
	} else {
		log.Printf("sms: %v, otp codes will not be delivered", domain.ErrSMSNotConfigured)
	}
	dispatcher := dispatch.NewDispatcher(d.otp, sender, d.otpValidity())
	return dispatch.NewWorker(dispatcher, d.queue, d.queue, d.cfg.Dispatch.MaxRetries, d.cfg.Dispatch.Workers)
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// sampleQuiz seeds the in-memory store so a bare checkout serves something today.
func sampleQuiz(today time.Time) domain.Quiz {
	return domain.Quiz{
		ID:          "sample-quiz",
		Title:       "Warm-up",
		Description: "A short quiz to try the flow locally.",
		Date:        today,
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: domain.IndexAnswer(1)},
			{Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter"}, CorrectAnswer: domain.TextAnswer("Mars")},
			{Text: "How many days are in a leap year?", Options: []string{"365", "366"}, CorrectAnswer: domain.TextAnswer("366")},
		},
	}
}
