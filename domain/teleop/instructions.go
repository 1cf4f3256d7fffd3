package teleop

// Instructions is printed once before the session starts
const Instructions = `
--------------------------------------------------
  Combined Robot and Pan-Tilt Unit Controller
--------------------------------------------------
Robot Base Controls:      | Pan-Tilt Controls:
  u    i    o             |   [Up Arrow]
  j    k    l             | [Left] [Down] [Right]
  m    ,    .             |
                          | [Space] : Reset PTU
--------------------------------------------------
- Hold <Shift> for strafing (holonomic mode).
- t/b: Move up/down
- q/z: Increase/decrease all speeds by 10%
- w/x: Increase/decrease linear speed by 10%
- e/c: Increase/decrease angular speed by 10%
- Press <k> or anything else to stop the robot.
- CTRL-C or q to quit
--------------------------------------------------
`
