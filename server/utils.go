package server

import (
	"bskyfollowers/followers"
	"bskyfollowers/utils"
	log "github.com/sirupsen/logrus"
	"net/http"
	"net/url"
)

const (
	notFollowingParam = "notFollowing"
	hasAvatarParam    = "hasAvatar"
	hasBioParam       = "hasBio"
)

func sendError(w http.ResponseWriter, errorCode int, message string) {
	log.Info(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorCode)
	resp := map[string]string{
		"error": message,
	}
	jsonResp := utils.ToJson(resp)
	w.Write(jsonResp)
}

func isChecked(values url.Values, key string) bool {
	switch values.Get(key) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

func criteriaFromValues(values url.Values) followers.Criteria {
	return followers.Criteria{
		ExcludeAlreadyFollowing: isChecked(values, notFollowingParam),
		RequireAvatar:           isChecked(values, hasAvatarParam),
		RequireBio:              isChecked(values, hasBioParam),
	}
}

// indexURL is the list page showing the given filters.
func indexURL(criteria followers.Criteria) string {
	values := url.Values{}
	if criteria.ExcludeAlreadyFollowing {
		values.Set(notFollowingParam, "on")
	}
	if criteria.RequireAvatar {
		values.Set(hasAvatarParam, "on")
	}
	if criteria.RequireBio {
		values.Set(hasBioParam, "on")
	}
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}
