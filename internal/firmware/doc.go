// Package firmware emulates the unit's firmware update workflow.
//
// Clients upload firmware images by name, ask whether any uploaded image is
// newer than what is installed, start an update and poll its progress. No
// image content is stored or flashed: the Manager keeps the list of names
// and runs a timed progress counter.
//
// Image names follow the vendor convention, for example
//
//	Bifrost_release_Mainboard_software_1.3.0.bin
//	Bifrost-IAM-V2_3.3.0.bin
//
// from which the component type and semantic version are extracted.
package firmware
