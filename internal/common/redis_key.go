package common

import "fmt"

func RedisKeyFailedSignIn(email string) string {
	return fmt.Sprintf("failedsignin:%s", email)
}

func RedisKeyRevokedToken(tokenID string) string {
	return fmt.Sprintf("revokedtoken:%s", tokenID)
}
