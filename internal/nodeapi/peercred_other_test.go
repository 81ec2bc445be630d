//go:build !linux

package nodeapi

const peerCredSupported = false
