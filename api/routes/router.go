package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/hotelops-backend/api/controllers"
	"github.com/angelmondragon/hotelops-backend/api/middleware"
	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/guests"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/staff"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/config"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
	"github.com/angelmondragon/hotelops-backend/pkg/redis"
)

// NewRouter wires every HTTP route. redisClient may be nil, which disables
// idempotent replay and drops Redis from the readiness check. gatherer may
// be nil to skip /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	coord *coordinator.Coordinator,
	roomService rooms.Service,
	guestService guests.Service,
	reservationService reservations.Service,
	staffService staff.Service,
	taskService tasks.Service,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var (
		redisPinger redis.Pinger
		idemStore   redis.IdempotencyStore
	)
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Operator(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/audit", controllers.Audit(coord, logg))

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", controllers.RoomList(roomService, logg))
			r.Get("/{number}", controllers.RoomDetail(roomService, logg))
			r.Patch("/{number}/status", controllers.RoomSetStatus(coord, logg))
			r.Get("/{number}/audit", controllers.RoomAudit(coord, logg))
		})

		r.Route("/guests", func(r chi.Router) {
			r.Post("/", controllers.GuestRegister(guestService, logg))
			r.Get("/", controllers.GuestList(guestService, logg))
			r.Get("/{guestId}", controllers.GuestDetail(guestService, logg))
			r.Get("/{guestId}/reservations", controllers.GuestReservations(guestService, reservationService, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Post("/", controllers.StaffRegister(staffService, logg))
			r.Get("/", controllers.StaffList(staffService, logg))
			r.Get("/{staffId}", controllers.StaffDetail(staffService, logg))
			r.Patch("/{staffId}/status", controllers.StaffSetStatus(staffService, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.ReservationCheckIn(coord, logg))
			r.Get("/", controllers.ReservationList(reservationService, logg))
			r.Get("/{reservationId}", controllers.ReservationDetail(reservationService, logg))
			r.Post("/{reservationId}/check-out", controllers.ReservationCheckOut(coord, logg))
			r.Post("/{reservationId}/cancel", controllers.ReservationCancel(coord, logg))
			r.Post("/{reservationId}/reschedule", controllers.ReservationReschedule(coord, logg))
			r.Post("/{reservationId}/charges", controllers.ReservationCharge(coord, logg))
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", controllers.TaskOpen(coord, logg))
			r.Get("/", controllers.TaskList(taskService, roomService, logg))
			r.Get("/{taskId}", controllers.TaskDetail(taskService, logg))
			r.Post("/{taskId}/consumptions", controllers.TaskRecordConsumption(coord, logg))
			r.Post("/{taskId}/close", controllers.TaskClose(coord, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", controllers.InventoryRegister(inventoryService, logg))
			r.Get("/", controllers.InventoryList(inventoryService, logg))
			r.Get("/{itemId}", controllers.InventoryDetail(inventoryService, logg))
			r.Get("/{itemId}/movements", controllers.InventoryMovements(inventoryService, logg))
			r.Post("/{itemId}/debit", controllers.InventoryDebit(inventoryService, logg))
			r.Post("/{itemId}/credit", controllers.InventoryCredit(inventoryService, logg))
			r.Patch("/{itemId}/status", controllers.InventorySetStatus(inventoryService, logg))
		})
	})

	return r
}
