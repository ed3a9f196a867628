package utils

// REVISION is stamped at build time with -ldflags "-X github.com/Swyp/Swyp-Backend/utils.REVISION=<sha>".
var REVISION = "dev"
