package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth  = RouteApiV1 + "/auth"
	RouteLogin = RouteAuth + "/login"

	// users
	RouteUsers    = RouteApiV1 + "/users"
	RouteMe       = RouteUsers + "/me"
	RouteMeAvatar = RouteMe + "/avatar"

	// files
	RouteFiles       = RouteApiV1 + "/files"
	RouteFile        = RouteFiles + "/:file_id"
	RouteUploadURL   = RouteFiles + "/upload-url"
	RouteDownloadURL = RouteFiles + "/download-url"

	// filesystem provider, token-gated
	RouteFilesystem         = RouteApiV1 + "/filesystem"
	RouteFilesystemDownload = RouteFilesystem + "/download/:token"
	RouteFilesystemUpload   = RouteFilesystem + "/upload/:token"

	// invites
	RouteInviteTokens       = RouteApiV1 + "/invite-tokens"
	RouteInviteToken        = RouteInviteTokens + "/:token"
	RouteRegisterWithInvite = RouteApiV1 + "/register-with-invite"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
