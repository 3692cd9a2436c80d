// Package system describes the machine the command runs on.
package system

import (
	"net"
	"os"
)

// Hostname returns the host name, falling back to the first interface
// address and then to "unknown".
func Hostname() string {
	hostname, err := os.Hostname()
	if err == nil && len(hostname) > 0 {
		return hostname
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil || len(addrs) == 0 {
		return "unknown"
	}

	return addrs[0].String()
}

// UserAgent is the default user agent of the command: product/version
// followed by the host it runs on.
func UserAgent(product, version string) string {
	return product + "/" + version + " (" + Hostname() + ")"
}
