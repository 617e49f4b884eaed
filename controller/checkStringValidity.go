package controller

import "regexp"

func CheckUsername(username string) bool {
	if ok, _ := regexp.MatchString(`^[a-zA-Z][\w]{3,15}$`, username); !ok {
		return false
	}
	return true
}

func CheckEmail(email string) bool {
	if ok, _ := regexp.MatchString(`^[\w.+-]+@[\w-]+\.[\w.]+$`, email); !ok {
		return false
	}
	return true
}

func CheckCameraId(cameraId string) bool {
	if ok, _ := regexp.MatchString(`^[\w.-]{1,64}$`, cameraId); !ok {
		return false
	}
	return true
}

func CheckAlarmId(alarmId string) bool {
	if ok, _ := regexp.MatchString(`^[\w-]{1,64}$`, alarmId); !ok {
		return false
	}
	return true
}
