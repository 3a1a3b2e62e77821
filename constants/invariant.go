package constants

const (
	APP_NAME        = "Inkwell"
	PUBLIC_URL      = "https://inkwell.meadow.cafe"
	PAGE_SIZE       = 10
	MAX_POST_LENGTH = 20000
)
