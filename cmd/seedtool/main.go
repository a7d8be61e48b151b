// cmd/seedtool/main.go
//
// Seeds a database with demo data: clients, courts, services, a tournament
// with enrolled teams, and a spread of reservations with payments. Individual
// failures are logged and skipped so a partial seed still leaves a usable
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/payments"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/tournaments"
)

type seedClient struct {
	first, last, nationalID, email, phone string
}

var seedClients = []seedClient{
	{"Martina", "Gomez", "30123456", "martina.gomez@example.com", "+5491155501001"},
	{"Lucas", "Fernandez", "28987654", "lucas.fernandez@example.com", "+5491155501002"},
	{"Sofia", "Alvarez", "33445566", "sofia.alvarez@example.com", "+5491155501003"},
	{"Mateo", "Diaz", "27654321", "mateo.diaz@example.com", "+5491155501004"},
	{"Valentina", "Romero", "31222333", "valentina.romero@example.com", "+5491155501005"},
	{"Joaquin", "Sosa", "29888777", "joaquin.sosa@example.com", "+5491155501006"},
	{"Camila", "Torres", "32111222", "camila.torres@example.com", "+5491155501007"},
	{"Benjamin", "Castro", "26555444", "benjamin.castro@example.com", "+5491155501008"},
}

func main() {
	dbPath := flag.String("db", "data/courtside.db", "path to sqlite database")
	days := flag.Int("days", 14, "number of days of reservations to generate")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx := context.Background()
	q := database.Queries

	clients := seedClientRows(ctx, q)
	courts := seedCourts(ctx, q)
	services := seedServices(ctx, q)
	seedReservations(ctx, q, clients, courts, services, *days)
	seedTournament(ctx, q, clients)

	log.Info().Msg("Seed complete")
}

func seedClientRows(ctx context.Context, q *store.Queries) []store.Client {
	var out []store.Client
	for _, c := range seedClients {
		created, err := q.CreateClient(ctx, store.CreateClientParams{
			FirstName:  c.first,
			LastName:   c.last,
			NationalID: c.nationalID,
			Email:      c.email,
			Phone:      c.phone,
		})
		if err != nil {
			log.Warn().Err(err).Str("email", c.email).Msg("Skipping client")
			continue
		}
		out = append(out, created)
	}
	log.Info().Int("count", len(out)).Msg("Seeded clients")
	return out
}

func seedCourts(ctx context.Context, q *store.Queries) []store.Court {
	types := []store.CreateCourtTypeParams{
		{Name: "Padel", Description: "Enclosed padel court with glass walls"},
		{Name: "Tennis", Description: "Outdoor clay tennis court"},
		{Name: "Futbol 5", Description: "Indoor five-a-side pitch"},
	}
	prices := map[string]int64{"Padel": 800000, "Tennis": 600000, "Futbol 5": 1200000}
	capacities := map[string]int64{"Padel": 4, "Tennis": 4, "Futbol 5": 10}

	var out []store.Court
	for _, tp := range types {
		courtType, err := q.CreateCourtType(ctx, tp)
		if err != nil {
			log.Warn().Err(err).Str("name", tp.Name).Msg("Skipping court type")
			continue
		}
		for i := 1; i <= 2; i++ {
			court, err := q.CreateCourt(ctx, store.CreateCourtParams{
				Name:             fmt.Sprintf("%s %d", courtType.Name, i),
				CourtTypeID:      courtType.ID,
				HourlyPriceCents: prices[courtType.Name],
				Capacity:         capacities[courtType.Name],
			})
			if err != nil {
				log.Warn().Err(err).Str("court_type", courtType.Name).Msg("Skipping court")
				continue
			}
			out = append(out, court)
		}
	}
	log.Info().Int("count", len(out)).Msg("Seeded courts")
	return out
}

func seedServices(ctx context.Context, q *store.Queries) []store.Service {
	params := []store.CreateServiceParams{
		{Name: "Racket rental", CostCents: 150000},
		{Name: "Ball canister", CostCents: 80000},
		{Name: "Grill access", CostCents: 500000},
		{Name: "Towel service", CostCents: 50000},
	}
	var out []store.Service
	for _, p := range params {
		s, err := q.CreateService(ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("name", p.Name).Msg("Skipping service")
			continue
		}
		out = append(out, s)
	}
	log.Info().Int("count", len(out)).Msg("Seeded services")
	return out
}

func seedReservations(ctx context.Context, q *store.Queries, clients []store.Client, courts []store.Court, services []store.Service, days int) {
	if len(clients) == 0 || len(courts) == 0 {
		log.Warn().Msg("No clients or courts; skipping reservations")
		return
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	count := 0
	for day := -days / 2; day < days/2; day++ {
		date := now.AddDate(0, 0, day)
		for _, court := range courts {
			// Two slots per court per day keeps the calendar readable.
			for _, hour := range []int{10, 18} {
				if rng.Intn(3) == 0 {
					continue
				}
				client := clients[rng.Intn(len(clients))]
				start := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.Local)
				end := start.Add(time.Duration(1+rng.Intn(2)) * time.Hour)

				var serviceCosts []int64
				var picked []store.Service
				if len(services) > 0 && rng.Intn(2) == 0 {
					s := services[rng.Intn(len(services))]
					picked = append(picked, s)
					serviceCosts = append(serviceCosts, s.CostCents)
				}

				reservation, err := q.CreateReservation(ctx, store.CreateReservationParams{
					ClientID:  client.ID,
					CourtID:   court.ID,
					StartTime: start,
					EndTime:   end,
					Status:    store.ReservationPending,
				})
				if err != nil {
					log.Warn().Err(err).Time("start", start).Msg("Skipping reservation")
					continue
				}
				for _, s := range picked {
					if err := q.AddReservationService(ctx, store.AddReservationServiceParams{
						ReservationID: reservation.ID,
						ServiceID:     s.ID,
					}); err != nil {
						log.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("Skipping reservation service")
					}
				}

				total := booking.TotalCostCents(court.HourlyPriceCents, start, end, serviceCosts)
				if _, err := q.CreatePayment(ctx, store.CreatePaymentParams{
					ReservationID: reservation.ID,
					AmountCents:   total,
					Status:        store.PaymentPending,
				}); err != nil {
					log.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("Skipping payment")
					continue
				}

				// Past reservations settle, most future ones stay pending.
				if day < 0 || rng.Intn(4) == 0 {
					method := store.MethodCash
					if rng.Intn(2) == 0 {
						method = store.MethodTransfer
					}
					if _, err := payments.MarkPaid(ctx, q, reservation.ID, method, "", start); err != nil {
						log.Warn().Err(err).Int64("reservation_id", reservation.ID).Msg("Skipping mark paid")
					}
				}
				count++
			}
		}
	}
	log.Info().Int("count", count).Msg("Seeded reservations")
}

func seedTournament(ctx context.Context, q *store.Queries, clients []store.Client) {
	if len(clients) < 8 {
		log.Warn().Msg("Not enough clients; skipping tournament")
		return
	}

	start := time.Now().AddDate(0, 0, 10)
	tournament, err := q.CreateTournament(ctx, store.CreateTournamentParams{
		Name:      "Spring Open",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 2),
		FeeCents:  1000000,
		Prize:     "Trophy and a season of free court time",
		Rules:     "Single elimination, best of three sets",
	})
	if err != nil {
		log.Warn().Err(err).Msg("Skipping tournament")
		return
	}

	teamNames := []string{"Smash Bros", "Net Profits", "Court Jesters", "Baseline Drive"}
	enrolled := 0
	for i, name := range teamNames {
		team, err := q.CreateTeam(ctx, store.CreateTeamParams{Name: name})
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("Skipping team")
			continue
		}
		for j := 0; j < 2; j++ {
			client := clients[(i*2+j)%len(clients)]
			if err := q.AddTeamPlayer(ctx, store.TeamPlayerParams{TeamID: team.ID, ClientID: client.ID}); err != nil {
				log.Warn().Err(err).Int64("team_id", team.ID).Msg("Skipping team player")
			}
		}
		if err := tournaments.Enroll(ctx, q, tournament.ID, team.ID, time.Now().UTC()); err != nil {
			log.Warn().Err(err).Int64("team_id", team.ID).Msg("Skipping enrollment")
			continue
		}
		enrolled++
	}
	log.Info().Int64("tournament_id", tournament.ID).Int("teams", enrolled).Msg("Seeded tournament")
}
