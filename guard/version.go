package guard

// Version identifies this module's release. Follows semver.
const Version = "0.1.0"
