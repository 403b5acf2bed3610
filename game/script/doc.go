// Package script parses the robot mini-language.
//
// Scripts are plain text. Each line may hold one call such as move(right),
// grab(), scan("up"), set_auto_grab(true), laser_tile(3, 4) or
// println!("hi"). Comment lines starting with // and anything the parser
// does not recognise are ignored; an empty result is not an error.
//
//	cmds := script.Parse("move(right);\ngrab();")
//	for _, c := range cmds {
//		fmt.Println(c.Kind, c)
//	}
package script
