package common

// set by -ldflags "-X gccinv/internal/common.version=..."
var version = "dev"

func GetVersion() string {
	return version
}
