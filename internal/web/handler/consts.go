package handler

const (
	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// IDParam is the route parameter holding a numeric identifier.
	IDParam = "id"

	// ErrNilACDFatalLogMsg is used if router, cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "router, cfg or db is nil"
)
