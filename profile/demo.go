package profile

import "github.com/rushteam/scoutmatch/core"

func player(id, name, position string, age, height, speed, strength, skill float64) *core.Profile {
	p := core.NewProfile(id, core.RolePlayer, name)
	p.Attributes["age"] = age
	p.Attributes["height"] = height
	p.Attributes["position"] = position
	p.Stats["speed"] = speed
	p.Stats["strength"] = strength
	p.Stats["skill"] = skill
	return p
}

func seeker(id string, role core.Role, name string, attrs, prefs map[string]any) *core.Profile {
	p := core.NewProfile(id, role, name)
	for k, v := range attrs {
		p.Attributes[k] = v
	}
	for k, v := range prefs {
		p.Preferences[k] = v
	}
	return p
}

// DemoProfiles 返回演示数据：球员、俱乐部、经纪人、教练各若干
func DemoProfiles() []*core.Profile {
	return []*core.Profile{
		player("player_1", "Marcus Silva", "Forward", 22, 180, 85, 70, 80),
		player("player_2", "Jonas Berg", "Defender", 25, 175, 78, 82, 75),
		player("player_3", "Leo Hart", "Midfielder", 19, 172, 90, 60, 78),
		player("player_4", "Andre Costa", "Defender", 28, 185, 70, 88, 72),
		player("player_5", "Tomas Novak", "Midfielder", 24, 178, 82, 75, 85),
		player("player_6", "Ivan Petrov", "Goalkeeper", 27, 191, 60, 80, 74),
		seeker("club_1", core.RoleClub, "Ajax Amsterdam", map[string]any{"country": "Netherlands"}, map[string]any{"age": 21, "height": 179, "speed": 87, "strength": 72, "skill": 82, "position": "Forward"}),
		seeker("club_2", core.RoleClub, "Porto Academy", map[string]any{"country": "Portugal"}, map[string]any{"age": 27, "height": 186, "speed": 68, "strength": 86, "skill": 70, "position": "Defender"}),
		seeker("agent_1", core.RoleAgent, "Elite Sports Mgmt", map[string]any{"specialization": "youth transfers"}, map[string]any{"age": 20, "speed": 88, "skill": 80}),
		seeker("coach_1", core.RoleCoach, "Carlos Mendes", map[string]any{"specialization": "attacking play"}, map[string]any{"age": 24, "height": 178, "speed": 80, "strength": 75, "skill": 84}),
	}
}
