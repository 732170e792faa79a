package config

import (
	"flag"
	"io"

	"github.com/chengshang-tools/launcher-auth/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-n", "-t", "-s", "-p", "-m", "-r", "-l", "-log-backend", "-log-format", "-log-level"}

// parseFlags overlays the server flags found in args.
//
//	-a string     gRPC bind address (default "127.0.0.1:50051")
//	-d string     database DSN
//	-n string     MongoDB database name
//	-t duration   store operation timeout
//	-s string     JWT HMAC secret key
//	-p string     password pepper
//	-m string     password scheme for new digests (sha256|argon2id)
//	-r duration   remember-me token validity
//	-l duration   auto-login token validity
//	-log-backend  slog|zap
//	-log-format   json|text
//	-log-level    debug|info|warn|error
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseName, "n", config.DatabaseName, "MongoDB database name")
	fs.DurationVar(&config.StoreTimeout, "t", config.StoreTimeout, "store operation timeout")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PasswordPepper, "p", config.PasswordPepper, "password pepper")
	fs.StringVar(&config.PasswordScheme, "m", config.PasswordScheme, "password scheme")
	fs.DurationVar(&config.RememberMeValidity, "r", config.RememberMeValidity, "remember-me token validity")
	fs.DurationVar(&config.AutoLoginValidity, "l", config.AutoLoginValidity, "auto-login token validity")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
