// Package detectors holds the pattern detectors that are not keyword rules:
// the hex literal counter and the Base64 run harvester.
package detectors
