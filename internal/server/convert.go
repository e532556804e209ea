package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/service/profile"
	"gift_autobuy/internal/domain/service/report"
	"gift_autobuy/internal/worker"
	"gift_autobuy/pkg/contextx"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/rest"
)

func newRESTConfig(cfg entity.Configuration, userbotConnected bool) rest.Config {
	return rest.Config{
		UserID:            cfg.UserID,
		Balance:           cfg.Balance,
		Active:            cfg.Active,
		LastMenuMessageID: cfg.LastMenuMessageID,
		Profiles: lo.Map(cfg.Profiles, func(p entity.Profile, index int) rest.Profile {
			return newRESTProfile(index, p)
		}),
		Userbot: rest.Userbot{
			Enabled: cfg.Userbot.Enabled,
			Balance: cfg.Userbot.Balance,
		},
		Summary: report.Summary(cfg, userbotConnected),
	}
}

func newRESTProfile(index int, p entity.Profile) rest.Profile {
	return rest.Profile{
		Index:      index,
		ID:         p.ID,
		Name:       p.Name,
		MinPrice:   p.MinPrice,
		MaxPrice:   p.MaxPrice,
		MinSupply:  p.MinSupply,
		MaxSupply:  p.MaxSupply,
		Count:      p.Count,
		Limit:      p.Limit,
		Target:     p.Target.String(),
		TargetKind: p.Target.Kind().String(),
		Sender:     p.Sender.String(),
		Bought:     p.Bought,
		Spent:      p.Spent,
		Done:       p.Done,
	}
}

func newDomainPatch(patch rest.ProfilePatch) profile.Patch {
	return profile.Patch{
		Name:      patch.Name,
		MinPrice:  patch.MinPrice,
		MaxPrice:  patch.MaxPrice,
		MinSupply: patch.MinSupply,
		MaxSupply: patch.MaxSupply,
		Count:     patch.Count,
		Limit:     patch.Limit,
		Target:    patch.Target,
		Sender:    patch.Sender,
	}
}

func newRESTWorkerStatus(status worker.Status) rest.WorkerStatus {
	var lastCycleAt *time.Time
	if !status.LastCycleAt.IsZero() {
		lastCycleAt = lo.ToPtr(status.LastCycleAt)
	}

	return rest.WorkerStatus{
		UserID:      status.UserID,
		State:       status.State.String(),
		Running:     status.Running,
		LastOutcome: status.LastOutcome.String(),
		LastCycleAt: lastCycleAt,
		Cycles:      status.Cycles,
	}
}

func userIDParam(r *http.Request) (int64, error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, domain.NewError(errcodes.InvalidUserID, "invalid user id")
	}

	return userID, nil
}

// requestUserID id владельца, сохранённый ownersOnly.
func requestUserID(r *http.Request) (int64, error) {
	userID, err := contextx.UserIDFromContext(r.Context())
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InvalidUserID, "invalid user id")
	}

	return int64(userID), nil
}

func profileIndexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, domain.NewError(errcodes.InvalidProfileIndex, "invalid profile index")
	}

	return index, nil
}
