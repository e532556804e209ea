package server

import (
	"net/http"

	"gift_autobuy/internal/domain"
	"gift_autobuy/internal/worker"
	"gift_autobuy/pkg/errcodes"
	"gift_autobuy/pkg/httpx/reply"
)

type workerStatusSource interface {
	Worker(userID int64) (*worker.PurchaseWorker, bool)
}

type WorkerServer struct {
	workers workerStatusSource
}

func NewWorkerServer(workers workerStatusSource) WorkerServer {
	return WorkerServer{workers: workers}
}

func (s WorkerServer) getV1Worker(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	userID, err := requestUserID(r)
	if err != nil {
		return err
	}

	purchaseWorker, ok := s.workers.Worker(userID)
	if !ok {
		return domain.NewError(errcodes.NotFound, "worker not found")
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTWorkerStatus(purchaseWorker.Status()))

	return nil
}
