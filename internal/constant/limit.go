package constant

import "time"

const (
	MAX_FILE_SIZE = 5 * 1024 * 1024

	GROUP_SEARCH_LIMIT    = 20
	GROUP_NAME_MIN_LENGTH = 3
	GROUP_NAME_MAX_LENGTH = 50

	DEFAULT_POST_LIMIT          = 20
	MAX_POST_LIMIT              = 50
	POST_TITLE_MAX_LENGTH       = 300
	POST_DESCRIPTION_MAX_LENGTH = 40000

	COMMENT_CONTENT_MAX_LENGTH = 10000

	USERNAME_MIN_LENGTH = 4
	USERNAME_MAX_LENGTH = 22
	PASSWORD_MIN_LENGTH = 8
	PASSWORD_MAX_LENGTH = 72

	DEFAULT_COMMENT_CACHE_TTL = 10 * time.Minute
)

const (
	COMMENT_ORPHAN_POLICY_FAIL     = "fail"
	COMMENT_ORPHAN_POLICY_REATTACH = "reattach"
)
