package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           riskd API
// @version         1.0
// @description     Read-only query API for credit-risk scores, features, and explanations.
//
// @contact.name   riskd maintainers
// @contact.url    https://github.com/your-org/riskd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
