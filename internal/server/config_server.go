package server

import (
	"context"
	"fmt"
	"net/http"

	"gift_autobuy/internal/domain/entity"
	"gift_autobuy/internal/domain/service/profile"
	"gift_autobuy/pkg/httpx/reply"
	"gift_autobuy/pkg/httpx/req"
	"gift_autobuy/pkg/rest"
)

type profileService interface {
	Get(ctx context.Context, userID int64) (entity.Configuration, error)
	Add(ctx context.Context, userID int64, patch profile.Patch) (entity.Configuration, error)
	Update(ctx context.Context, userID int64, index int, patch profile.Patch) (entity.Configuration, error)
	Remove(ctx context.Context, userID int64, index int) (entity.Configuration, error)
	SetActive(ctx context.Context, userID int64, active bool) (entity.Configuration, error)
	Toggle(ctx context.Context, userID int64) (entity.Configuration, error)
	Reset(ctx context.Context, userID int64) (entity.Configuration, error)
}

type balanceService interface {
	ForceRefresh(ctx context.Context, userID int64) (int64, error)
}

type ConfigServer struct {
	profileService profileService
	balanceService balanceService
	userbotReady   func() bool
}

func NewConfigServer(profileService profileService, balanceService balanceService) ConfigServer {
	return ConfigServer{
		profileService: profileService,
		balanceService: balanceService,
		userbotReady:   func() bool { return false },
	}
}

// WithUserbotReady источник признака подключённого юзербота для сводки.
func (s ConfigServer) WithUserbotReady(ready func() bool) ConfigServer {
	s.userbotReady = ready

	return s
}

func (s ConfigServer) getV1Config(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	cfg, err := s.profileService.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("profileService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) postV1Profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	var request rest.ProfilePatch

	if r.ContentLength != 0 {
		if err = req.Read(r, &request); err != nil {
			return fmt.Errorf("req.Read: %w", err)
		}
	}

	cfg, err := s.profileService.Add(ctx, userID, newDomainPatch(request))
	if err != nil {
		return fmt.Errorf("profileService.Add: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) patchV1Profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	index, err := profileIndexParam(r)
	if err != nil {
		return err
	}

	var request rest.ProfilePatch

	if err = req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	cfg, err := s.profileService.Update(ctx, userID, index, newDomainPatch(request))
	if err != nil {
		return fmt.Errorf("profileService.Update: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) deleteV1Profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	index, err := profileIndexParam(r)
	if err != nil {
		return err
	}

	cfg, err := s.profileService.Remove(ctx, userID, index)
	if err != nil {
		return fmt.Errorf("profileService.Remove: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) putV1Active(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	var request rest.SetActive

	if err = req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	cfg, err := s.profileService.SetActive(ctx, userID, *request.Active)
	if err != nil {
		return fmt.Errorf("profileService.SetActive: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) postV1ActiveToggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	cfg, err := s.profileService.Toggle(ctx, userID)
	if err != nil {
		return fmt.Errorf("profileService.Toggle: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) postV1Reset(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	cfg, err := s.profileService.Reset(ctx, userID)
	if err != nil {
		return fmt.Errorf("profileService.Reset: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTConfig(cfg, s.userbotReady()))

	return nil
}

func (s ConfigServer) postV1BalanceRefresh(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	balance, err := s.balanceService.ForceRefresh(ctx, userID)
	if err != nil {
		return fmt.Errorf("balanceService.ForceRefresh: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Balance{Balance: balance})

	return nil
}
