package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mihaja/univ-housing/internal/config"
	"github.com/mihaja/univ-housing/internal/database"
	"github.com/mihaja/univ-housing/internal/handler"
	"github.com/mihaja/univ-housing/internal/queue"
	"github.com/mihaja/univ-housing/internal/repository"
	"github.com/mihaja/univ-housing/internal/router"
)

func main() {
	// .env is a convenience for local runs; in deployment the variables
	// come from the environment and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is not configured

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	matricules := repository.NewMatriculeRepo(db)
	students := repository.NewStudentRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)

	auth := handler.NewAuthHandler(cfg, db, users, students, matricules, tokens)
	profile := handler.NewProfileHandler(students)
	roomBrowse := handler.NewRoomBrowseHandler(rooms)
	reservation := handler.NewReservationHandler(students, rooms, reservations)
	payment := handler.NewPaymentHandler(cfg, students, rooms, reservations, payments)
	adminMatricule := handler.NewAdminMatriculeHandler(matricules)
	adminRoom := handler.NewAdminRoomHandler(rooms)
	adminReservation := handler.NewAdminReservationHandler(rooms, reservations)

	// Background consumer appends accepted payments to logs/payment.log.
	go queue.StartPaymentConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterStudent(e, cfg.JWTSecret, rdb, profile, roomBrowse, reservation, payment)
	router.RegisterAdmin(e, cfg.JWTSecret, adminMatricule, adminRoom, adminReservation)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
