package platform

// Kinetis ports.
const (
	portA = iota
	portB
	portC
	portD
	portE
)

type portBit struct{ port, bit uint8 }

// pin is TinyGo's MK66 numbering, port*32 + bit.
func (pb portBit) pin() uint8 { return pb.port*32 + pb.bit }

// mk66Connector maps Teensy 3.6 pin labels to port pins.
var mk66Connector = [58]portBit{
	{portB, 16}, {portB, 17}, {portD, 0}, {portA, 12}, // 0-3
	{portA, 13}, {portD, 7}, {portD, 4}, {portD, 2}, // 4-7
	{portD, 3}, {portC, 3}, {portC, 4}, {portC, 6}, // 8-11
	{portC, 7}, {portC, 5}, {portD, 1}, {portC, 0}, // 12-15
	{portB, 0}, {portB, 1}, {portB, 3}, {portB, 2}, // 16-19
	{portD, 5}, {portD, 6}, {portC, 1}, {portC, 2}, // 20-23
	{portE, 26}, {portA, 5}, {portA, 14}, {portA, 15}, // 24-27
	{portA, 16}, {portB, 18}, {portB, 19}, {portB, 10}, // 28-31
	{portB, 11}, {portE, 24}, {portE, 25}, {portC, 8}, // 32-35
	{portC, 9}, {portC, 10}, {portC, 11}, {portA, 17}, // 36-39
	{portA, 28}, {portA, 29}, {portA, 26}, {portB, 20}, // 40-43
	{portB, 22}, {portB, 23}, {portB, 21}, {portD, 8}, // 44-47
	{portD, 9}, {portB, 4}, {portB, 5}, {portD, 14}, // 48-51
	{portD, 13}, {portD, 12}, {portD, 15}, {portD, 11}, // 52-55
	{portE, 10}, {portE, 11}, // 56-57
}
