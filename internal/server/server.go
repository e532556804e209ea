package server

// Server объединяет HTTP серверы отдельных сущностей: конфигурации
// пользователя и воркера закупки.
type Server struct {
	ConfigServer
	WorkerServer

	owners map[int64]struct{}
}

func NewServer(
	configServer ConfigServer,
	workerServer WorkerServer,
	ownerIDs ...int64,
) Server {
	owners := make(map[int64]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	return Server{
		ConfigServer: configServer,
		WorkerServer: workerServer,
		owners:       owners,
	}
}
