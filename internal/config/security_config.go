package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No session required
	SecurityAdmin                       // Admin session token required
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to
// their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public browsing
	"health":         SecurityPublic,
	"rooms.list":     SecurityPublic,
	"rooms.get":      SecurityPublic,
	"rooms.estimate": SecurityPublic,
	"files.download": SecurityPublic,

	// Inquiries
	"inquiries.create": SecurityPublic,
	"inquiries.get":    SecurityPublic,

	// Admin session issuance
	"admin.login": SecurityPublic,

	// Admin listing management
	"admin.session":             SecurityAdmin,
	"admin.rooms.list":          SecurityAdmin,
	"admin.rooms.get":           SecurityAdmin,
	"admin.rooms.create":        SecurityAdmin,
	"admin.rooms.update":        SecurityAdmin,
	"admin.rooms.delete":        SecurityAdmin,
	"admin.rooms.toggle":        SecurityAdmin,
	"admin.rooms.images.delete": SecurityAdmin,
	"admin.rooms.inquiries":     SecurityAdmin,

	// gRPC
	"/grpc.health.v1.Health/Check":                   SecurityPublic,
	"/grpc.health.v1.Health/List":                    SecurityPublic,
	"/locationapp.v1.OpsService/GetRoom":             SecurityPublic,
	"/locationapp.v1.OpsService/ReleaseExpiredRooms": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route or method name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAdmin
}
