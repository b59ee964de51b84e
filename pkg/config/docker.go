package config

import (
	"net"
	"os"
	"sync"
)

const (
	// dockerHostAlias reaches services on the machine running the container.
	dockerHostAlias = "host.docker.internal"
	// dockerEnvFile marks a Docker container filesystem.
	dockerEnvFile = "/.dockerenv"
)

var inDocker = sync.OnceValue(func() bool {
	_, err := os.Stat(dockerEnvFile)
	return err == nil
})

// IsRunningInDocker reports whether the process runs inside a Docker container.
func IsRunningInDocker() bool {
	return inDocker()
}

// ResolveHostForDocker rewrites a loopback database host to the Docker host
// alias when running in a container. Other hosts are returned unchanged.
func ResolveHostForDocker(host string) string {
	if !isLoopback(host) || !IsRunningInDocker() {
		return host
	}
	return dockerHostAlias
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
