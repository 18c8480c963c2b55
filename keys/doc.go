// Package keys signs and verifies world state snapshots.
//
// Node keys are derived deterministically from a 32-byte root seed and are
// formatted as "<alg>:" + base64(public key), for example "ed25519:MCow...".
package keys
