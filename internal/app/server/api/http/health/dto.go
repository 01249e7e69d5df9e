package health

type Input struct{}

type Output struct {
	Body Response
}

// Response is the liveness payload. The client pings it before attempting a
// sync, so the body stays a single status field.
type Response struct {
	Status string `json:"status" example:"OK" doc:"Liveness status of the sync service"`
}
