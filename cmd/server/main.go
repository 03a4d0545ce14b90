package main

import "blinddating/internal/app"

// @title           Blind Dating API
// @version         1.0
// @description     Backend регистрации: анкета, подтверждение email по коду, оплата взноса.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
